package config

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/templay/internal/formatter"
)

// Wire shapes used for output only. Field order here is the serialized key order.
type (
	fileV1 struct {
		Version        int            `json:"version" yaml:"version" toml:"version"`
		ExternalEditor editorV1       `json:"external_editor" yaml:"external_editor" toml:"external_editor"`
		Templates      []fileTemplate `json:"templates" yaml:"templates" toml:"templates"`
	}
	editorV1 struct {
		Command string `json:"command" yaml:"command" toml:"command"`
		Args    string `json:"args" yaml:"args" toml:"args"`
	}

	fileV2 struct {
		Version        int            `json:"version" yaml:"version" toml:"version"`
		ExternalEditor editorV2       `json:"external_editor" yaml:"external_editor" toml:"external_editor"`
		Templates      []fileTemplate `json:"templates" yaml:"templates" toml:"templates"`
	}
	editorV2 struct {
		Name    string `json:"name" yaml:"name" toml:"name"`
		Command string `json:"command" yaml:"command" toml:"command"`
		Args    string `json:"args" yaml:"args" toml:"args"`
	}

	fileTemplate struct {
		Name    string `json:"name" yaml:"name" toml:"name"`
		Content string `json:"content" yaml:"content" toml:"content"`
	}
)

// Encode serializes cfg in format f using the wire shape of cfg.Version.
// A named editor cannot be written in revision 1 shape; Upgrade first.
func Encode(cfg Configuration, f Format) ([]byte, error) {
	doc, err := wireShape(cfg)
	if err != nil {
		return nil, err
	}
	return marshal(doc, f)
}

// EncodeAs serializes cfg in the shape of rev without changing anything else.
func EncodeAs(cfg Configuration, rev Revision, f Format) ([]byte, error) {
	cfg.Version = int(rev)
	return Encode(cfg, f)
}

func wireShape(cfg Configuration) (any, error) {
	templates := make([]fileTemplate, 0, len(cfg.Templates))
	for _, t := range cfg.Templates {
		templates = append(templates, fileTemplate(t))
	}

	switch rev := cfg.Revision(); rev {
	case RevisionV1:
		if cfg.ExternalEditor.Name != "" {
			return nil, fmt.Errorf("%w (name %q)", ErrNameDropped, cfg.ExternalEditor.Name)
		}
		return fileV1{
			Version:        cfg.Version,
			ExternalEditor: editorV1{Command: cfg.ExternalEditor.Command, Args: cfg.ExternalEditor.Args},
			Templates:      templates,
		}, nil
	case RevisionV2:
		return fileV2{
			Version:        cfg.Version,
			ExternalEditor: editorV2(cfg.ExternalEditor),
			Templates:      templates,
		}, nil
	default:
		return nil, &UnsupportedVersionError{Version: cfg.Version}
	}
}

func marshal(doc any, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		out, err := formatter.FormatYAML(doc, 2)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return []byte(out), nil
	case FormatTOML:
		data, err := toml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}
