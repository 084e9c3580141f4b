// Package query selects templates with CEL boolean expressions.
//
// Expressions see three variables: name (string), content (string) and index (int,
// the template's position in the configuration). The cel-go strings extension is
// loaded, so e.g. `name.lowerAscii().startsWith("bug")` and
// `content.contains("{name}") && index < 10` both work.
package query

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/templay/internal/config"
)

// Variable names bound for each template.
const (
	VarName    = "name"
	VarContent = "content"
	VarIndex   = "index"
)

// Filter is a compiled template predicate. The zero value is not usable; a nil
// *Filter matches every template.
type Filter struct {
	expr string
	prg  cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(VarName, cel.StringType),
		cel.Variable(VarContent, cel.StringType),
		cel.Variable(VarIndex, cel.IntType),
		celext.Strings(),
	)
}

// Compile parses and type-checks expr. An empty expression yields a nil filter,
// which matches everything.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("compile %q: expression must evaluate to bool, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter for the template at position index.
func (f *Filter) Match(index int, t config.Template) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(map[string]any{
		VarName:    t.Name,
		VarContent: t.Content,
		VarIndex:   int64(index),
	})
	if err != nil {
		return false, fmt.Errorf("eval %q on templates[%d]: %w", f.expr, index, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q on templates[%d]: result %v is not a bool", f.expr, index, out.Value())
	}
	return b, nil
}

// Apply returns the templates the filter matches, in their original order.
func (f *Filter) Apply(templates []config.Template) ([]config.Template, error) {
	out := make([]config.Template, 0, len(templates))
	for i, t := range templates {
		ok, err := f.Match(i, t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}
