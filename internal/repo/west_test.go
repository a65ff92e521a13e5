package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultWest = `manifest:
  defaults:
    revision: v0.2
  remotes:
    - name: zmkfirmware
      url-base: https://github.com/zmkfirmware
  projects:
    - name: zmk
      remote: zmkfirmware
      import: app/west.yml
  self:
    path: config
`

func parse(t *testing.T, src string) *Manifest {
	t.Helper()
	m, err := ParseManifest([]byte(src))
	require.NoError(t, err)
	return m
}

func TestParseManifest(t *testing.T) {
	m := parse(t, defaultWest)

	assert.Equal(t, "v0.2", m.DefaultRevision())
	assert.Equal(t, "v0.2", m.ZMKRevision())

	remotes, err := m.Remotes()
	require.NoError(t, err)
	assert.Equal(t, []Remote{{Name: "zmkfirmware", URLBase: "https://github.com/zmkfirmware"}}, remotes)

	projects, err := m.Projects()
	require.NoError(t, err)
	assert.Equal(t, []Project{{Name: "zmk", Remote: "zmkfirmware"}}, projects)
}

func TestParseManifest_Errors(t *testing.T) {
	_, err := ParseManifest([]byte("projects: []\n"))
	assert.ErrorContains(t, err, `no "manifest" section`)

	_, err = ParseManifest([]byte("manifest: [\n"))
	assert.Error(t, err)
}

func TestClassifyRevision(t *testing.T) {
	tests := []struct {
		rev  string
		want RevisionKind
	}{
		{"", RevisionDefault},
		{"v0.2", RevisionVersion},
		{"v0.2.1", RevisionVersion},
		{"v3", RevisionVersion},
		{"main", RevisionBranch},
		{"0.2", RevisionBranch},
		{"feature/studio", RevisionBranch},
		{"1a2b3c4", RevisionCommit},
		{"0123456789abcdef0123456789abcdef01234567", RevisionCommit},
	}

	for _, tt := range tests {
		t.Run(tt.rev, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRevision(tt.rev))
		})
	}
	assert.Equal(t, "commit", RevisionCommit.String())
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, -1, CompareVersions("v0.2", "v0.3"))
	assert.Equal(t, 0, CompareVersions("v0.2", "v0.2.0"))
	assert.Equal(t, -1, CompareVersions("main", "v0.1"))
}

func TestSplitModuleURL(t *testing.T) {
	tests := []struct {
		url               string
		base, owner, name string
		wantErr           bool
	}{
		{url: "https://github.com/urob/zmk-helpers", base: "https://github.com/urob", owner: "urob", name: "zmk-helpers"},
		{url: "https://github.com/urob/zmk-helpers.git/", base: "https://github.com/urob", owner: "urob", name: "zmk-helpers"},
		{url: "git@github.com:caksoylar/zmk-tri-state.git", base: "git@github.com:caksoylar", owner: "caksoylar", name: "zmk-tri-state"},
		{url: "zmk-helpers", wantErr: true},
		{url: "https://github.com", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			base, owner, name, err := SplitModuleURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestAddModule(t *testing.T) {
	m := parse(t, defaultWest)

	p, changed, err := m.AddModule("https://github.com/urob/zmk-helpers", "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, Project{Name: "zmk-helpers", Remote: "urob", Revision: "main"}, p)

	out, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, `manifest:
  defaults:
    revision: v0.2
  remotes:
    - name: zmkfirmware
      url-base: https://github.com/zmkfirmware
    - name: urob
      url-base: https://github.com/urob
  projects:
    - name: zmk
      remote: zmkfirmware
      import: app/west.yml
    - name: zmk-helpers
      remote: urob
      revision: main
  self:
    path: config
`, string(out))
}

func TestAddModule_ReusesRemote(t *testing.T) {
	m := parse(t, defaultWest)

	p, changed, err := m.AddModule("https://github.com/zmkfirmware/zmk-component-example", "v0.1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "zmkfirmware", p.Remote)

	remotes, err := m.Remotes()
	require.NoError(t, err)
	assert.Len(t, remotes, 1)
}

func TestAddModule_RemoteNameClash(t *testing.T) {
	m := parse(t, defaultWest)

	p, _, err := m.AddModule("https://gitlab.com/zmkfirmware/zmk-extra", "main")
	require.NoError(t, err)
	assert.Equal(t, "zmkfirmware-2", p.Remote)
}

func TestAddModule_Idempotent(t *testing.T) {
	m := parse(t, defaultWest)
	_, _, err := m.AddModule("https://github.com/urob/zmk-helpers", "main")
	require.NoError(t, err)
	before, err := m.Bytes()
	require.NoError(t, err)

	p, changed, err := m.AddModule("https://github.com/urob/zmk-helpers", "v2")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "main", p.Revision)

	after, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestAddModule_CreatesSections(t *testing.T) {
	m := parse(t, "manifest:\n  self:\n    path: config\n")

	_, changed, err := m.AddModule("https://github.com/urob/zmk-helpers", "main")
	require.NoError(t, err)
	assert.True(t, changed)

	projects, err := m.Projects()
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestRemoveProject(t *testing.T) {
	m := parse(t, defaultWest)
	_, _, err := m.AddModule("https://github.com/urob/zmk-helpers", "main")
	require.NoError(t, err)
	_, _, err = m.AddModule("https://github.com/urob/zmk-adaptive-key", "main")
	require.NoError(t, err)

	removed, err := m.RemoveProject("zmk-helpers")
	require.NoError(t, err)
	assert.True(t, removed)
	remotes, err := m.Remotes()
	require.NoError(t, err)
	assert.Len(t, remotes, 2, "remote still used by zmk-adaptive-key")

	removed, err = m.RemoveProject("zmk-adaptive-key")
	require.NoError(t, err)
	assert.True(t, removed)
	remotes, err = m.Remotes()
	require.NoError(t, err)
	assert.Equal(t, []Remote{{Name: "zmkfirmware", URLBase: "https://github.com/zmkfirmware"}}, remotes)

	removed, err = m.RemoveProject("zmk-helpers")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = m.RemoveProject("zmk")
	assert.ErrorIs(t, err, ErrProtectedProject)
}

func TestManifest_Write(t *testing.T) {
	root := newTestRepo(t, "# my keyboards\n"+defaultWest)
	m, err := LoadManifest(filepath.Join(root, "config", "west.yml"))
	require.NoError(t, err)

	_, _, err = m.AddModule("https://github.com/urob/zmk-helpers", "main")
	require.NoError(t, err)
	require.NoError(t, m.Write())

	data, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "# my keyboards")
	assert.Contains(t, string(data), "name: zmk-helpers")

	assert.Error(t, parse(t, defaultWest).Write(), "parsed manifests have no path")
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "west.yml"))
	assert.ErrorContains(t, err, "failed to read west manifest")
}
