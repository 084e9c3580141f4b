package config

import (
	"fmt"
	"strings"
)

// Severity grades a validation issue. Only SeverityError makes a configuration invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding tied to a field path.
type Issue struct {
	Field    string
	Message  string
	Severity Severity
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// ValidationResult collects every issue found in one pass.
type ValidationResult struct {
	Issues []Issue
}

// Valid reports whether no error-severity issue was found.
func (r ValidationResult) Valid() bool {
	return len(r.Errors()) == 0
}

// Errors returns the error-severity issues.
func (r ValidationResult) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning-severity issues.
func (r ValidationResult) Warnings() []Issue { return r.filter(SeverityWarning) }

// Err returns a *ValidationError when the result is invalid, nil otherwise.
func (r ValidationResult) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Issues: errs}
}

func (r ValidationResult) filter(s Severity) []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == s {
			out = append(out, is)
		}
	}
	return out
}

func (r *ValidationResult) add(sev Severity, field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: sev})
}

// Validate applies the usability policy to a parsed configuration:
//   - external_editor.command must be non-empty (error)
//   - version must name a known revision (error)
//   - templates should have a name to be selectable (warning)
//   - template names should be unique (warning)
//
// An empty args string is always acceptable.
func Validate(cfg Configuration) ValidationResult {
	var res ValidationResult

	if !cfg.Revision().Valid() {
		res.add(SeverityError, "version", "unsupported version %d (supported: %d..%d)", cfg.Version, RevisionV1, CurrentRevision)
	}
	if strings.TrimSpace(cfg.ExternalEditor.Command) == "" {
		res.add(SeverityError, "external_editor.command", "must not be empty")
	}

	seen := make(map[string]int, len(cfg.Templates))
	for i, t := range cfg.Templates {
		field := fmt.Sprintf("templates[%d].name", i)
		if strings.TrimSpace(t.Name) == "" {
			res.add(SeverityWarning, field, "empty name; template cannot be selected")
			continue
		}
		if first, dup := seen[t.Name]; dup {
			res.add(SeverityWarning, field, "duplicate of templates[%d] (%q)", first, t.Name)
			continue
		}
		seen[t.Name] = i
	}
	return res
}
