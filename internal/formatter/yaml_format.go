package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatYAML renders v as YAML with the given indent (2 when <= 0). Keys follow the
// json tags of v. Multi-line strings are emitted as literal blocks when the block
// reads back to the exact same string, and double-quoted otherwise.
//
// v goes through encoding/json into a yaml.Node tree instead of yaml.Node.Encode:
// yaml.v3 re-parses its own output there and fails on strings it cannot represent
// as a literal block (a leading space, a tab after a newline).
func FormatYAML(v any, indent int) (string, error) {
	if indent <= 0 {
		indent = 2
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return "", fmt.Errorf("convert to yaml node: %w", err)
	}
	restyle(&node, false, indent)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(&node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// restyle drops the flow and quoting styles picked up from JSON and chooses the
// style of every string scalar. Mapping keys never become blocks.
func restyle(n *yaml.Node, key bool, indent int) {
	switch n.Kind {
	case yaml.ScalarNode:
		n.Style = 0
		if n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
			n.Style = yaml.DoubleQuotedStyle
			if !key && literalRoundTrips(n.Value, indent) {
				n.Style = yaml.LiteralStyle
			}
		}
	case yaml.MappingNode:
		n.Style = 0
		for i, c := range n.Content {
			restyle(c, i%2 == 0, indent)
		}
	default:
		n.Style = 0
		for _, c := range n.Content {
			restyle(c, false, indent)
		}
	}
}

// literalRoundTrips reports whether s survives a literal block nested the way a
// template body is: a mapping value inside a sequence.
func literalRoundTrips(s string, indent int) bool {
	doc := &yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "k"},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.LiteralStyle},
		},
	}}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(doc); err != nil {
		return false
	}
	if err := enc.Close(); err != nil {
		return false
	}
	var back []map[string]string
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		return false
	}
	return len(back) == 1 && back[0]["k"] == s
}
