package config

// Merge layers override on top of base:
//   - the editor is replaced as a whole record when override names a command, since a
//     name or args string inherited from a different editor would be wrong; an override
//     with no command leaves the base editor untouched
//   - an override template replaces the base template of the same name in place;
//     templates with new names are appended in override order
//   - the result carries the higher of the two versions
//
// Base templates the override does not mention survive untouched.
func Merge(base, override Configuration) Configuration {
	out := base.Clone()

	if override.Version > out.Version {
		out.Version = override.Version
	}
	if override.ExternalEditor.Command != "" {
		out.ExternalEditor = override.ExternalEditor
	}
	for _, t := range override.Templates {
		out = out.WithTemplate(t)
	}
	return out
}
