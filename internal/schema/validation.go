package schema

import (
	"fmt"
	"strings"
)

// ValidationError is one problem found in a document.
type ValidationError struct {
	Field   string // e.g. "siblings[1]", empty for the document itself
	Message string
	Line    int // 0 when unknown
}

func (e *ValidationError) Error() string {
	field := e.Field
	if field == "" {
		field = "(root)"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", field, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", field, e.Message)
}

// ValidationErrors is every problem found in a document.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "found %d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}
