package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/templay/internal/config"
	"github.com/oakwood-commons/templay/internal/formatter"
	"github.com/oakwood-commons/templay/pkg/logger"
	"github.com/oakwood-commons/templay/pkg/settings"
)

// Output formats accepted by -o.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputTOML  = "toml"
)

// stdinPath selects standard input wherever a file argument is accepted.
const stdinPath = "-"

func runSettings(cmd *cobra.Command) *settings.Run {
	return settings.FromContextOrDefault(cmd.Context())
}

func parseOutput(value string, allowed ...string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "yml" {
		v = outputYAML
	}
	if !slices.Contains(allowed, v) {
		return "", fmt.Errorf("invalid output format %q (use %s)", value, strings.Join(allowed, "|"))
	}
	return v, nil
}

// loadEffective returns the defaults merged with the resolved user file and the
// path that was used ("" when only defaults apply).
func loadEffective(cmd *cobra.Command) (config.Configuration, string, error) {
	log := logger.Component(cmd.Context(), "cli")
	path := config.ResolvePath(runSettings(cmd).ConfigPath)
	cfg, err := config.LoadMerged(path)
	if err != nil {
		return config.Configuration{}, path, err
	}
	if path == "" {
		log.V(1).Info("no config file found, using built-in defaults")
	} else {
		log.V(1).Info("loaded config", logger.PathKey, path, "version", cfg.Version, "templates", len(cfg.Templates))
	}
	return cfg, path, nil
}

// writablePath is where edits and `config init` go: the resolved path, falling back
// to the default location when no file exists yet.
func writablePath(cmd *cobra.Command) (string, error) {
	if p := config.ResolvePath(runSettings(cmd).ConfigPath); p != "" {
		return p, nil
	}
	if p := config.DefaultPath(); p != "" {
		return p, nil
	}
	return "", errors.New("cannot determine a config path; pass --config-file")
}

// userFile is the user configuration layer being edited, without defaults merged in.
type userFile struct {
	path   string
	cfg    config.Configuration
	exists bool
}

// loadUserFile reads the writable config file. A missing file starts from the
// default editor and no templates.
func loadUserFile(cmd *cobra.Command) (*userFile, error) {
	path, err := writablePath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFile(path)
	if err == nil {
		return &userFile{path: path, cfg: cfg, exists: true}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	def, err := config.Default()
	if err != nil {
		return nil, err
	}
	return &userFile{
		path: path,
		cfg: config.Configuration{
			Version:        int(config.CurrentRevision),
			ExternalEditor: def.ExternalEditor,
			Templates:      []config.Template{},
		},
	}, nil
}

// save validates cfg and atomically writes it. A revision 1 file that gains an editor
// name is upgraded first so the name is not lost.
func (u *userFile) save(ctx context.Context, cfg config.Configuration) error {
	log := logger.Component(ctx, "cli")
	if cfg.Revision() == config.RevisionV1 && cfg.ExternalEditor.Name != "" {
		cfg = config.Upgrade(cfg)
		log.Info("upgraded config file to the current revision", logger.PathKey, u.path, "version", cfg.Version)
	}
	if err := config.Validate(cfg).Err(); err != nil {
		return err
	}
	if err := config.SaveFile(ctx, u.path, cfg); err != nil {
		return err
	}
	u.cfg = cfg
	u.exists = true
	return nil
}

// readSource reads a file argument, or stdin for "-", and reports its format.
func readSource(cmd *cobra.Command, path string) ([]byte, config.Format, error) {
	if path == stdinPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, config.DetectFormat(data), nil
	}
	f, err := config.FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read config %s: %w", path, err)
	}
	return data, f, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func writeYAML(w io.Writer, v any) error {
	out, err := formatter.FormatYAML(v, 2)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// tableWidth limits tables to the terminal width; non-terminal output is not truncated.
func tableWidth(cmd *cobra.Command) int {
	if f, ok := cmd.OutOrStdout().(*os.File); ok && formatter.IsTerminal(f) {
		return formatter.TerminalWidth(f)
	}
	return 0
}

func writeTable(cmd *cobra.Command, headers []string, rows [][]string) error {
	out := formatter.RenderTable(headers, rows, runSettings(cmd).NoColor, tableWidth(cmd))
	_, err := io.WriteString(cmd.OutOrStdout(), out)
	return err
}

func writeKeyValue(cmd *cobra.Command, rows [][]string) error {
	out := formatter.RenderKeyValue(rows, runSettings(cmd).NoColor, tableWidth(cmd))
	_, err := io.WriteString(cmd.OutOrStdout(), out)
	return err
}
