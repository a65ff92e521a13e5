package templates

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/zmkgen/internal/build"
	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/repo"
	"github.com/simonhull/zmkgen/internal/tmpl"
)

func TestLoad_BuiltIn(t *testing.T) {
	store, err := Load("")
	require.NoError(t, err)

	for _, f := range RepoFiles {
		assert.True(t, store.Has(f.Template), f.Template)
	}
	for _, layout := range []string{"unibody", "split"} {
		for _, name := range []string{"overlay", "keymap", "conf", "Kconfig.shield", "Kconfig.defconfig", "zmk.yml"} {
			if layout == "split" && name == "overlay" {
				continue
			}
			_, err := store.Resolve("shield/" + layout + "/" + name)
			assert.NoError(t, err, "shield/%s/%s", layout, name)
		}
	}
}

func TestLoad_UserDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "repo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repo", "README.md.mako"), []byte("# ${name} (custom)\n"), 0o644))

	store, err := Load(dir)
	require.NoError(t, err)

	g := generator.New(store)
	out, err := g.Render("repo/README.md", tmpl.Context{"name": "keys"})
	require.NoError(t, err)
	assert.Equal(t, "# keys (custom)\n", out)
	assert.True(t, store.Has("repo/west.yml"), "built-in templates remain")
}

func TestLoad_BadUserDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Load(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestRepoFiles_Generate(t *testing.T) {
	store, err := Load("")
	require.NoError(t, err)

	root := t.TempDir()
	_, err = generator.New(store).Generate(context.Background(), root, RepoFiles, tmpl.Context{"name": "zmk-config"}, generator.FailIfExists, generator.ExecuteOptions{})
	require.NoError(t, err)

	r, err := repo.Open(root)
	require.NoError(t, err, "a generated skeleton is a config repo")

	m, err := r.Manifest()
	require.NoError(t, err)
	assert.Equal(t, "main", m.ZMKRevision())

	matrix, err := build.Load(r.BuildMatrixPath())
	require.NoError(t, err)
	require.NoError(t, matrix.Validate())
	items, err := matrix.Include()
	require.NoError(t, err)
	assert.Empty(t, items)

	workflow, err := os.ReadFile(filepath.Join(root, ".github", "workflows", "build.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(workflow), "build-user-config.yml@main")

	readme, err := os.ReadFile(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "# zmk-config\n")
	assert.Contains(t, string(readme), "revision `main`")
}

func TestRepoFiles_Revision(t *testing.T) {
	store, err := Load("")
	require.NoError(t, err)

	out, err := generator.New(store).Render("repo/west.yml", tmpl.Context{"zmk_revision": "v0.3"})
	require.NoError(t, err)

	m, err := repo.ParseManifest([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "v0.3", m.ZMKRevision())
}
