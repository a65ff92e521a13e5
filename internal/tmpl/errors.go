package tmpl

import (
	"fmt"
	"strings"
)

// UnknownTemplateError is returned when a template name is not in the store.
type UnknownTemplateError struct {
	Name string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("template %q not found", e.Name)
}

// UnknownParentError is returned when a variant inherits from a template that
// is not in the store.
type UnknownParentError struct {
	Template string
	Parent   string
}

func (e *UnknownParentError) Error() string {
	return fmt.Sprintf("template %q inherits from unknown template %q", e.Template, e.Parent)
}

// CyclicParentError is returned when a parent chain visits a template twice.
// Chain lists the templates in walk order, ending with the repeated one.
type CyclicParentError struct {
	Chain []string
}

func (e *CyclicParentError) Error() string {
	return fmt.Sprintf("cyclic template inheritance: %s", strings.Join(e.Chain, " -> "))
}

// UnknownBlockError is returned when a variant overrides a block that no
// template in its parent chain declares.
type UnknownBlockError struct {
	Template string
	Block    string
}

func (e *UnknownBlockError) Error() string {
	return fmt.Sprintf("template %q overrides block %q which its parents do not declare", e.Template, e.Block)
}

// MissingVariableError is returned when a placeholder has no value in the
// render context or in the template defaults.
type MissingVariableError struct {
	Template string // template whose text references the placeholder
	Name     string
	Line     int
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("%s:%d: no value for placeholder %q", e.Template, e.Line, e.Name)
}

// TemplateSyntaxError reports malformed tags or placeholders.
type TemplateSyntaxError struct {
	Template string
	Line     int
	Msg      string
}

func (e *TemplateSyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Template, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Template, e.Msg)
}
