package tmpl

import "strings"

// Context maps placeholder names to values for one render call.
type Context map[string]string

// Render substitutes every placeholder of a resolved template. Values come
// from ctx first, then from the template defaults. Values are inserted as-is
// (after filters) and never parsed again. Render has no side effects, so the
// same inputs always produce the same output.
func Render(r *Resolved, ctx Context) (string, error) {
	var b strings.Builder
	for _, n := range r.Nodes {
		switch n.Kind {
		case TextNode:
			b.WriteString(n.Text)
		case VarNode:
			value, ok := ctx[n.Name]
			if !ok {
				value, ok = r.Defaults[n.Name]
			}
			if !ok {
				return "", &MissingVariableError{Template: n.Source, Name: n.Name, Line: n.Line}
			}
			for _, f := range n.Filters {
				value = filterFuncs[f](value)
			}
			b.WriteString(value)
		}
	}
	return b.String(), nil
}

// RenderString parses, resolves and renders a standalone template. The text
// may not inherit from another template.
func RenderString(name, text string, ctx Context) (string, error) {
	t, err := Parse(name, text)
	if err != nil {
		return "", err
	}
	s, err := NewStore(t)
	if err != nil {
		return "", err
	}
	r, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	return Render(r, ctx)
}
