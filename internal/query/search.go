package query

import (
	"github.com/sahilm/fuzzy"

	"github.com/oakwood-commons/templay/internal/config"
)

// Match is a template found by Search together with its configuration index.
type Match struct {
	Index    int
	Template config.Template
}

// Search fuzzy-matches pattern against template names and returns the hits, best
// first. Ties keep configuration order. An empty pattern matches nothing.
func Search(pattern string, templates []config.Template) []Match {
	if pattern == "" || len(templates) == 0 {
		return nil
	}
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	found := fuzzy.Find(pattern, names)
	out := make([]Match, 0, len(found))
	for _, m := range found {
		out = append(out, Match{Index: m.Index, Template: templates[m.Index]})
	}
	return out
}

// Suggest returns up to limit template names resembling name, best first.
func Suggest(name string, templates []config.Template, limit int) []string {
	var out []string
	for _, m := range Search(name, templates) {
		if len(out) == limit {
			break
		}
		out = append(out, m.Template.Name)
	}
	return out
}
