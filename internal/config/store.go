package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/oakwood-commons/templay/pkg/logger"
	"github.com/oakwood-commons/templay/pkg/settings"
)

// DefaultFileName is the file looked up under the user config directory.
const DefaultFileName = "config.toml"

// LoadFile reads and decodes the configuration at path; the codec follows the extension.
func LoadFile(path string) (Configuration, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Configuration{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Decode(data, f)
	if err != nil {
		return Configuration{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadMerged returns the embedded defaults with the file at path merged on top.
// An empty path yields the defaults alone.
func LoadMerged(path string) (Configuration, error) {
	cfg, err := Default()
	if err != nil {
		return Configuration{}, fmt.Errorf("load default config: %w", err)
	}
	if path == "" {
		return cfg, nil
	}
	user, err := LoadFile(path)
	if err != nil {
		return Configuration{}, err
	}
	return Merge(cfg, user), nil
}

// SaveFile encodes cfg in the format implied by path and atomically replaces the file.
// Readers never observe a partially written configuration.
func SaveFile(ctx context.Context, path string, cfg Configuration) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(cfg, f)
	if err != nil {
		return err
	}
	return writeAtomic(ctx, path, data)
}

// WriteDefault writes the embedded defaults to path. A .toml path receives the
// embedded file verbatim, comments included; other formats are encoded from Default().
func WriteDefault(ctx context.Context, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if f == FormatTOML {
		return writeAtomic(ctx, path, DefaultConfigTOML())
	}
	cfg, err := Default()
	if err != nil {
		return err
	}
	return SaveFile(ctx, path, cfg)
}

func writeAtomic(ctx context.Context, path string, data []byte) error {
	log := logger.FromContext(ctx)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() {
		// no-op once committed
		if err := pendingFile.Cleanup(); err != nil {
			log.V(1).Info("cleanup pending config file", "error", err.Error())
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write config data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace config file: %w", err)
	}
	log.V(1).Info("config written", logger.PathKey, path, "bytes", len(data))
	return nil
}

// ResolvePath picks the configuration file to use:
//  1. explicit, when non-empty
//  2. $TEMPLAY_CONFIG, when set
//  3. $XDG_CONFIG_HOME/templay/config.toml or ~/.config/templay/config.toml, if present
//
// It returns "" when none applies, meaning defaults only.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(settings.EnvConfigPath); env != "" {
		return env
	}
	candidate := DefaultPath()
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// DefaultPath is where `templay config init` writes when no path is given.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, settings.CliBinaryName, DefaultFileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", settings.CliBinaryName, DefaultFileName)
	}
	return ""
}
