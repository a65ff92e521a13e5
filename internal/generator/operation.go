package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileMode is the mode of new files written without an explicit Mode.
const DefaultFileMode fs.FileMode = 0o644

// Operation is one file system change of a generation.
//
// Validate checks whether the operation can succeed without touching the
// disk. Execute performs it, journaling what it changes in tx so a failed
// generation can be rolled back; tx may be nil. Description is a short
// human-readable summary such as "config/corne.keymap (234 bytes)".
type Operation interface {
	Validate(ctx context.Context) error
	Execute(ctx context.Context, tx *Transaction) (Outcome, error)
	Description() string
}

// WriteFileOp writes rendered content to Path under Policy.
//
// Parent directories are created as needed. Content may be empty but not
// nil. A zero Mode keeps the mode of a replaced file and gives new files
// DefaultFileMode. The file is written to a temporary sibling and renamed into place, so
// readers never observe a partial file.
type WriteFileOp struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
	Policy  Policy
}

func (op *WriteFileOp) Validate(ctx context.Context) error {
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}

	info, err := os.Stat(op.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("cannot stat %s: %w", op.Path, err)
	case info.IsDir():
		if op.Policy == SkipIfExists {
			return nil
		}
		return fmt.Errorf("cannot write %s: it is a directory", op.Path)
	case op.Policy == FailIfExists:
		return &DestinationExistsError{Path: op.Path}
	}
	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context, tx *Transaction) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	existing, err := os.ReadFile(op.Path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		if op.Policy == SkipIfExists {
			return Skipped, nil
		}
		return 0, fmt.Errorf("cannot read %s: %w", op.Path, err)
	}

	outcome := Created
	if exists {
		switch op.Policy {
		case SkipIfExists:
			return Skipped, nil
		case Overwrite:
			if bytes.Equal(existing, op.Content) {
				return Unchanged, nil
			}
			outcome = Overwritten
		default:
			return 0, &DestinationExistsError{Path: op.Path}
		}
	}

	mode := op.Mode
	if mode == 0 {
		mode = DefaultFileMode
		if info, err := os.Stat(op.Path); err == nil && exists {
			mode = info.Mode().Perm()
		}
	}

	if err := mkdirAll(filepath.Dir(op.Path), 0o755, tx); err != nil {
		return 0, err
	}
	if tx != nil {
		if err := tx.record(op.Path, existing, exists); err != nil {
			return 0, err
		}
	}
	if err := writeAtomic(op.Path, op.Content, mode); err != nil {
		return 0, err
	}
	return outcome, nil
}

// with returns a copy of op using policy.
func (op *WriteFileOp) with(policy Policy) *WriteFileOp {
	cp := *op
	cp.Policy = policy
	return &cp
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("%s (%d bytes)", op.Path, len(op.Content))
}

// MkdirOp creates a directory and its parents. An existing directory is
// left alone.
type MkdirOp struct {
	Path string
	Mode fs.FileMode
}

func (op *MkdirOp) Validate(ctx context.Context) error {
	info, err := os.Stat(op.Path)
	if err == nil && !info.IsDir() {
		return fmt.Errorf("cannot create directory %s: a file is in the way", op.Path)
	}
	return nil
}

func (op *MkdirOp) Execute(ctx context.Context, tx *Transaction) (Outcome, error) {
	if info, err := os.Stat(op.Path); err == nil && info.IsDir() {
		return Unchanged, nil
	}
	mode := op.Mode
	if mode == 0 {
		mode = 0o755
	}
	if err := mkdirAll(op.Path, mode, tx); err != nil {
		return 0, err
	}
	return Created, nil
}

func (op *MkdirOp) Description() string {
	return op.Path + string(filepath.Separator)
}

// Write persists content at path under policy, outside of any transaction.
// Ask behaves like FailIfExists because there is nobody to ask.
func Write(path string, content []byte, policy Policy) (Outcome, error) {
	op := &WriteFileOp{Path: path, Content: content, Policy: policy}
	if policy == Ask {
		op.Policy = FailIfExists
	}
	ctx := context.Background()
	if err := op.Validate(ctx); err != nil {
		return 0, err
	}
	return op.Execute(ctx, nil)
}

// mkdirAll is os.MkdirAll that journals every directory it creates.
func mkdirAll(dir string, mode fs.FileMode, tx *Transaction) error {
	var missing []string
	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}

	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], mode); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("cannot create directory %s: %w", missing[i], err)
		}
		if tx != nil {
			tx.recordDir(missing[i])
		}
	}
	return nil
}

func writeAtomic(path string, content []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("cannot set mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}
