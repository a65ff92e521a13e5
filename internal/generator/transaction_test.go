package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_RollbackRestoresState(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "west.yml")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o600))

	tx := NewTransaction()
	ctx := context.Background()

	_, err := (&WriteFileOp{Path: existing, Content: []byte("new"), Policy: Overwrite}).Execute(ctx, tx)
	require.NoError(t, err)
	created := filepath.Join(dir, "boards", "shields", "corne", "corne.keymap")
	_, err = (&WriteFileOp{Path: created, Content: []byte("keymap")}).Execute(ctx, tx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		existing,
		filepath.Join(dir, "boards"),
		filepath.Join(dir, "boards", "shields"),
		filepath.Join(dir, "boards", "shields", "corne"),
		created,
	}, tx.Paths())

	require.NoError(t, tx.Rollback())

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	info, err := os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.NoFileExists(t, created)
	assert.NoDirExists(t, filepath.Join(dir, "boards"))
}

func TestTransaction_RollbackKeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	tx := NewTransaction()

	path := filepath.Join(dir, "config", "a.conf")
	_, err := (&WriteFileOp{Path: path, Content: []byte("a")}).Execute(context.Background(), tx)
	require.NoError(t, err)

	foreign := filepath.Join(dir, "config", "user.conf")
	require.NoError(t, os.WriteFile(foreign, []byte("mine"), 0o644))

	require.NoError(t, tx.Rollback())
	assert.NoFileExists(t, path)
	assert.FileExists(t, foreign)
}

func TestTransaction_CommitDisablesRollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	tx := NewTransaction()

	_, err := (&WriteFileOp{Path: path, Content: []byte("a")}).Execute(context.Background(), tx)
	require.NoError(t, err)

	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback())
	assert.FileExists(t, path)

	assert.ErrorContains(t, tx.Commit(), "already committed")
}

func TestTransaction_FirstRecordWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	tx := NewTransaction()
	ctx := context.Background()

	_, err := (&WriteFileOp{Path: path, Content: []byte("v2"), Policy: Overwrite}).Execute(ctx, tx)
	require.NoError(t, err)
	_, err = (&WriteFileOp{Path: path, Content: []byte("v3"), Policy: Overwrite}).Execute(ctx, tx)
	require.NoError(t, err)

	require.NoError(t, tx.Rollback())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}
