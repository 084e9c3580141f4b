package config

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed default_config.toml
var embeddedDefaultConfig []byte

var (
	defaultOnce sync.Once
	defaultCfg  Configuration
	defaultErr  error
)

// DefaultConfigTOML returns a copy of the embedded default config bytes.
func DefaultConfigTOML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration.
// It is the single source of truth for default values.
func Default() (Configuration, error) {
	defaultOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			defaultErr = fmt.Errorf("embedded default config is empty")
			return
		}
		cfg, err := Decode(embeddedDefaultConfig, FormatTOML)
		if err != nil {
			defaultErr = fmt.Errorf("decode embedded default config: %w", err)
			return
		}
		defaultCfg = cfg
	})
	return defaultCfg.Clone(), defaultErr
}
