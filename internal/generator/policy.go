package generator

import (
	"fmt"
	"strings"
)

// Policy decides what a write does when its destination already exists.
type Policy int

const (
	FailIfExists Policy = iota
	Overwrite
	SkipIfExists
	Ask
)

func (p Policy) String() string {
	switch p {
	case FailIfExists:
		return "fail"
	case Overwrite:
		return "overwrite"
	case SkipIfExists:
		return "skip"
	case Ask:
		return "ask"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a policy name as printed by String back to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail", "fail-if-exists":
		return FailIfExists, nil
	case "overwrite", "force":
		return Overwrite, nil
	case "skip", "skip-if-exists":
		return SkipIfExists, nil
	case "ask":
		return Ask, nil
	default:
		return FailIfExists, fmt.Errorf("unknown overwrite policy %q", s)
	}
}

// PolicyFromFlags maps the --force/--skip/--diff command flags to a policy.
// interactive tells whether a terminal is available to ask on.
func PolicyFromFlags(force, skip, interactive bool) (Policy, error) {
	switch {
	case force && skip:
		return FailIfExists, fmt.Errorf("--force cannot be combined with --skip")
	case force:
		return Overwrite, nil
	case skip:
		return SkipIfExists, nil
	case interactive:
		return Ask, nil
	default:
		return FailIfExists, nil
	}
}

// DestinationExistsError is returned when a FailIfExists write finds its
// destination already present. Nothing is written.
type DestinationExistsError struct {
	Path string
}

func (e *DestinationExistsError) Error() string {
	return fmt.Sprintf("file already exists: %s (use --force to overwrite or --skip to keep it)", e.Path)
}

// Outcome reports what a write did.
type Outcome int

const (
	Created Outcome = iota
	Overwritten
	Skipped
	Unchanged
	Conflict // dry runs only: an Ask write would have to ask
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "create"
	case Overwritten:
		return "overwrite"
	case Skipped:
		return "skip"
	case Unchanged:
		return "identical"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}
