package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// rawConfig is the union of every revision's wire shape. Pointer fields distinguish a
// missing key from an empty value, which is what tells revision 1 apart from revision 2
// and a malformed payload apart from an empty command.
type rawConfig struct {
	Version        *int          `json:"version" yaml:"version" toml:"version"`
	ExternalEditor *rawEditor    `json:"external_editor" yaml:"external_editor" toml:"external_editor"`
	Templates      []rawTemplate `json:"templates" yaml:"templates" toml:"templates"`
}

type rawEditor struct {
	Name    *string `json:"name" yaml:"name" toml:"name"`
	Command *string `json:"command" yaml:"command" toml:"command"`
	Args    *string `json:"args" yaml:"args" toml:"args"`
}

type rawTemplate struct {
	Name    *string `json:"name" yaml:"name" toml:"name"`
	Content *string `json:"content" yaml:"content" toml:"content"`
}

// Decode parses a payload in format f and normalizes it to the in-memory shape.
//
// The returned Configuration keeps the version the payload was read as; call Upgrade
// to move it to CurrentRevision. A missing external_editor.name is the revision 1
// signal and decodes to the empty default; it is never an error.
func Decode(data []byte, f Format) (Configuration, error) {
	raw, err := unmarshalRaw(data, f)
	if err != nil {
		return Configuration{}, err
	}
	rev, err := raw.revision()
	if err != nil {
		return Configuration{}, err
	}
	return raw.normalize(rev)
}

// DetectRevision reports which revision a payload would be decoded as.
func DetectRevision(data []byte, f Format) (Revision, error) {
	raw, err := unmarshalRaw(data, f)
	if err != nil {
		return 0, err
	}
	return raw.revision()
}

func unmarshalRaw(data []byte, f Format) (rawConfig, error) {
	var raw rawConfig
	var err error
	switch f {
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return raw, &MalformedConfigError{Reason: "empty document"}
		}
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	default:
		return raw, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return raw, &MalformedConfigError{Reason: fmt.Sprintf("invalid %s", f), Err: err}
	}
	return raw, nil
}

// revision resolves the declared version. A missing or zero version is inferred from
// the editor shape; anything outside the known range is rejected rather than guessed.
func (r rawConfig) revision() (Revision, error) {
	v := 0
	if r.Version != nil {
		v = *r.Version
	}
	if v == 0 {
		if r.ExternalEditor != nil && r.ExternalEditor.Name != nil {
			return RevisionV2, nil
		}
		return RevisionV1, nil
	}
	rev := Revision(v)
	if !rev.Valid() {
		return 0, &UnsupportedVersionError{Version: v}
	}
	return rev, nil
}

func (r rawConfig) normalize(rev Revision) (Configuration, error) {
	if r.ExternalEditor == nil {
		return Configuration{}, missingField("external_editor")
	}
	if r.ExternalEditor.Command == nil {
		return Configuration{}, missingField("external_editor.command")
	}

	cfg := Configuration{
		Version: int(rev),
		ExternalEditor: ExternalEditor{
			Name:    deref(r.ExternalEditor.Name),
			Command: *r.ExternalEditor.Command,
			Args:    deref(r.ExternalEditor.Args),
		},
		Templates: make([]Template, 0, len(r.Templates)),
	}
	for i, t := range r.Templates {
		if t.Content == nil {
			return Configuration{}, missingField(fmt.Sprintf("templates[%d].content", i))
		}
		cfg.Templates = append(cfg.Templates, Template{Name: deref(t.Name), Content: *t.Content})
	}
	return cfg, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
