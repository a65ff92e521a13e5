package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Transaction journals the changes of a generation so they can be undone.
//
// Operations record each file before replacing it and each directory they
// create. Rollback restores overwritten files, removes created files and
// removes created directories that are empty again. Commit discards the
// journal.
type Transaction struct {
	entries   []journalEntry
	seen      map[string]bool
	committed bool
}

type journalEntry struct {
	path    string
	dir     bool
	existed bool
	content []byte
	mode    fs.FileMode
}

// NewTransaction starts an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{seen: make(map[string]bool)}
}

// record saves the state of path before it is written. Only the first
// record for a path counts.
func (t *Transaction) record(path string, previous []byte, existed bool) error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}
	if t.seen[path] {
		return nil
	}
	t.seen[path] = true

	entry := journalEntry{path: path, existed: existed}
	if existed {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot stat %s: %w", path, err)
		}
		entry.content = previous
		entry.mode = info.Mode().Perm()
	}
	t.entries = append(t.entries, entry)
	return nil
}

func (t *Transaction) recordDir(path string) {
	if t.committed || t.seen[path] {
		return
	}
	t.seen[path] = true
	t.entries = append(t.entries, journalEntry{path: path, dir: true})
}

// Paths returns the files and directories touched so far, in order.
func (t *Transaction) Paths() []string {
	paths := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		paths = append(paths, e.path)
	}
	return paths
}

// Commit keeps every change. A committed transaction cannot be rolled back.
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}
	t.committed = true
	t.entries = nil
	return nil
}

// Rollback undoes the journaled changes in reverse order. It is a no-op
// after Commit, so it is safe to defer.
func (t *Transaction) Rollback() error {
	if t.committed {
		return nil
	}

	var errs []error
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		var err error
		switch {
		case e.dir:
			// Fails, and is ignored, when something else was put in it.
			_ = os.Remove(e.path)
		case e.existed:
			err = writeAtomic(e.path, e.content, e.mode)
		default:
			err = os.Remove(e.path)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("rollback %s: %w", e.path, err))
		}
	}
	t.entries = nil
	t.seen = make(map[string]bool)
	return errors.Join(errs...)
}
