package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedConfig classifies payloads that cannot produce a Configuration:
	// syntax errors, wrong field types, or missing required fields.
	// Use errors.Is(err, ErrMalformedConfig) instead of string matching.
	ErrMalformedConfig = errors.New("malformed config")

	// ErrUnsupportedVersion classifies payloads declaring a version this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidConfig classifies configurations that parsed but failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNameDropped is returned when encoding a named editor in revision 1 shape,
	// which has no field to carry the name.
	ErrNameDropped = errors.New("revision 1 cannot carry external_editor.name")

	// ErrUnknownFormat is returned for file extensions with no known codec.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrTemplateNotFound is returned when no template carries the requested name.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateExists is returned when adding a name that is already taken
	// without asking to replace it.
	ErrTemplateExists = errors.New("template already exists")
)

// MalformedConfigError reports the field that made a payload unusable.
type MalformedConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedConfigError) Error() string {
	var b strings.Builder
	b.WriteString(ErrMalformedConfig.Error())
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MalformedConfigError) Is(target error) bool { return target == ErrMalformedConfig }

func (e *MalformedConfigError) Unwrap() error { return e.Err }

func missingField(field string) *MalformedConfigError {
	return &MalformedConfigError{Field: field, Reason: "required field is missing"}
}

// UnsupportedVersionError reports the version value that was rejected.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s %d (supported: %d..%d)", ErrUnsupportedVersion, e.Version, RevisionV1, CurrentRevision)
}

func (e *UnsupportedVersionError) Is(target error) bool { return target == ErrUnsupportedVersion }

// ValidationError carries the error-severity issues of a failed validation.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.String())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidConfig }
