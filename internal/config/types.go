// Package config defines the templay configuration record, the on-disk revisions it
// is read from and written to, and the helpers that load, validate, merge and persist it.
//
// Only one in-memory shape exists (Configuration, always the latest revision). Older
// revisions exist purely as wire shapes: Decode normalizes them on the way in and
// Encode reproduces them on the way out, selected by Configuration.Version.
package config

import "slices"

// Revision identifies one of the recorded shapes of the configuration file.
type Revision int

const (
	// RevisionV1 is the original shape: the external editor has command and args only.
	RevisionV1 Revision = 1
	// RevisionV2 adds a human-readable name to the external editor.
	RevisionV2 Revision = 2

	// CurrentRevision is the shape Upgrade produces and new files are written in.
	CurrentRevision = RevisionV2
)

// Valid reports whether r is a revision this package can read and write.
func (r Revision) Valid() bool {
	return r >= RevisionV1 && r <= CurrentRevision
}

// Configuration is the root record persisted to control templay.
type Configuration struct {
	Version        int
	ExternalEditor ExternalEditor
	Templates      []Template
}

// ExternalEditor describes how to invoke an external text editor.
// Name is empty for configurations read from revision 1.
type ExternalEditor struct {
	Name    string
	Command string
	Args    string
}

// Template is a named, opaque text snippet.
type Template struct {
	Name    string
	Content string
}

// Revision returns the wire shape selected by the configuration's version.
func (c Configuration) Revision() Revision {
	return Revision(c.Version)
}

// Clone returns a deep copy. The template slice is never nil.
func (c Configuration) Clone() Configuration {
	c.Templates = cloneTemplates(c.Templates)
	return c
}

// Upgrade returns a copy of c at CurrentRevision. Command, args, name and the
// templates (in order) are carried over unchanged; a configuration that came from
// revision 1 keeps the default empty name.
func Upgrade(c Configuration) Configuration {
	out := c.Clone()
	out.Version = int(CurrentRevision)
	return out
}

// Equal reports structural equality. A nil and an empty template list are equal.
func Equal(a, b Configuration) bool {
	if a.Version != b.Version || a.ExternalEditor != b.ExternalEditor {
		return false
	}
	return slices.Equal(a.Templates, b.Templates)
}

// FindTemplate returns the first template named name.
func (c Configuration) FindTemplate(name string) (Template, bool) {
	for _, t := range c.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// WithTemplate returns a copy of c where the first template named t.Name is
// replaced by t, or t is appended when no such template exists.
func (c Configuration) WithTemplate(t Template) Configuration {
	out := c.Clone()
	for i := range out.Templates {
		if out.Templates[i].Name == t.Name {
			out.Templates[i] = t
			return out
		}
	}
	out.Templates = append(out.Templates, t)
	return out
}

// WithoutTemplate returns a copy of c without any template named name.
// The boolean reports whether something was removed.
func (c Configuration) WithoutTemplate(name string) (Configuration, bool) {
	out := c.Clone()
	n := len(out.Templates)
	out.Templates = slices.DeleteFunc(out.Templates, func(t Template) bool {
		return t.Name == name
	})
	return out, len(out.Templates) != n
}

// WithEditor returns a copy of c using e as its external editor.
func (c Configuration) WithEditor(e ExternalEditor) Configuration {
	out := c.Clone()
	out.ExternalEditor = e
	return out
}

func cloneTemplates(in []Template) []Template {
	out := make([]Template, len(in))
	copy(out, in)
	return out
}
