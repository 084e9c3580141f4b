package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Format names a serialization codec for the configuration file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats in the order they are offered to users.
var Formats = []Format{FormatTOML, FormatYAML, FormatJSON}

// ParseFormat accepts a user-supplied format name ("yml" is an alias of yaml).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q (use toml|yaml|json)", ErrUnknownFormat, s)
	}
}

// FormatFromPath selects the codec from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

var (
	// [section], [[array]], [a."b c"]
	tomlSectionPattern = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// key = value (YAML uses key: value)
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
	// an unindented configuration key in YAML form
	yamlTopLevelKeyPattern = regexp.MustCompile(`^(?:version|external_editor|templates)\s*:`)
)

// SniffFormat guesses the codec of a payload with no file name, such as stdin.
// JSON objects are recognized by their leading brace. A top-level YAML key such as
// "version:" means YAML; otherwise TOML is recognized by section headers or a
// majority of key = value lines, and anything else is treated as YAML.
func SniffFormat(data []byte) Format {
	input := strings.TrimSpace(string(data))
	if strings.HasPrefix(input, "{") {
		return FormatJSON
	}
	if hasYAMLTopLevelKey(input) {
		return FormatYAML
	}
	if isLikelyTOML(input) {
		return FormatTOML
	}
	return FormatYAML
}

// DetectFormat sniffs data and confirms the guess by decoding it. When the guess
// does not decode, the remaining formats are tried in Formats order and the first
// that decodes wins. If none does, the sniffed format is returned so that decoding
// reports its error.
func DetectFormat(data []byte) Format {
	guess := SniffFormat(data)
	if _, err := Decode(data, guess); err == nil {
		return guess
	}
	for _, f := range Formats {
		if f == guess {
			continue
		}
		if _, err := Decode(data, f); err == nil {
			return f
		}
	}
	return guess
}

func hasYAMLTopLevelKey(input string) bool {
	for _, line := range strings.Split(input, "\n") {
		if yamlTopLevelKeyPattern.MatchString(line) {
			return true
		}
	}
	return false
}

func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		if tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}

	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}
