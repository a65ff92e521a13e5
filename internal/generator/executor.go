package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/simonhull/zmkgen/internal/logger"
)

// ExecuteOptions configures Execute.
type ExecuteOptions struct {
	DryRun bool

	// Resolver settles Ask writes whose destination exists. Without one they
	// fail with *DestinationExistsError.
	Resolver *Resolver

	// Writer receives one progress line per operation. Nil is silent.
	Writer io.Writer
}

// Result pairs an operation with what it did (or, in a dry run, would do).
type Result struct {
	Op      Operation
	Outcome Outcome
}

var outcomeStyles = map[Outcome]lipgloss.Style{
	Created:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	Overwritten: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	Skipped:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	Unchanged:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	Conflict:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

// Execute validates every operation, then runs them in order. Nothing is
// written unless all of them validate. If one fails while executing, the
// changes made so far are rolled back.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) ([]Result, error) {
	w := opts.Writer
	if w == nil {
		w = io.Discard
	}

	for _, op := range ops {
		if err := op.Validate(ctx); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	results := make([]Result, 0, len(ops))

	if opts.DryRun {
		for _, op := range ops {
			outcome, err := plan(op)
			if err != nil {
				return nil, err
			}
			report(w, outcome, "[dry run] "+op.Description())
			results = append(results, Result{Op: op, Outcome: outcome})
		}
		return results, nil
	}

	tx := NewTransaction()
	defer func() {
		if err := tx.Rollback(); err != nil {
			logger.Warn("rollback incomplete", logger.F("error", err))
		}
	}()

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resolved, err := settle(op, opts.Resolver)
		if err != nil {
			return nil, err
		}

		outcome, err := resolved.Execute(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("execution failed: %w", err)
		}
		logger.Debug("operation executed", logger.F("op", op.Description()), logger.F("outcome", outcome))
		report(w, outcome, op.Description())
		results = append(results, Result{Op: op, Outcome: outcome})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return results, nil
}

func report(w io.Writer, outcome Outcome, desc string) {
	label := outcomeStyles[outcome].Render(fmt.Sprintf("%10s", outcome))
	fmt.Fprintf(w, "%s  %s\n", label, desc)
}

// settle turns an Ask write with an existing, different destination into a
// write with the policy the resolver picks. Other operations pass through.
func settle(op Operation, resolver *Resolver) (Operation, error) {
	w, ok := op.(*WriteFileOp)
	if !ok || w.Policy != Ask {
		return op, nil
	}

	existing, err := os.ReadFile(w.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return w.with(FailIfExists), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", w.Path, err)
	}
	if bytes.Equal(existing, w.Content) {
		return w.with(Overwrite), nil
	}
	if resolver == nil {
		return nil, &DestinationExistsError{Path: w.Path}
	}

	policy, err := resolver.ResolveConflict(w.Path, existing, w.Content)
	if err != nil {
		return nil, err
	}
	return w.with(policy), nil
}

// plan predicts the outcome of op without changing anything.
func plan(op Operation) (Outcome, error) {
	switch op := op.(type) {
	case *WriteFileOp:
		existing, err := os.ReadFile(op.Path)
		if errors.Is(err, fs.ErrNotExist) {
			return Created, nil
		}
		if op.Policy == SkipIfExists {
			return Skipped, nil
		}
		if err != nil {
			return 0, fmt.Errorf("cannot read %s: %w", op.Path, err)
		}
		switch {
		case bytes.Equal(existing, op.Content):
			return Unchanged, nil
		case op.Policy == Overwrite:
			return Overwritten, nil
		default:
			return Conflict, nil
		}
	case *MkdirOp:
		if info, err := os.Stat(op.Path); err == nil && info.IsDir() {
			return Unchanged, nil
		}
		return Created, nil
	default:
		return Created, nil
	}
}
