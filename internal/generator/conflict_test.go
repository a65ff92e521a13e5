package generator

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted answers with the given resolutions in order.
func scripted(answers ...ConflictResolution) (ConflictStrategy, *int) {
	calls := 0
	return ConflictStrategyFunc(func(string, []byte, []byte) (ConflictResolution, error) {
		r := answers[calls]
		calls++
		return r, nil
	}), &calls
}

func TestResolver_MapsDecisionsToPolicies(t *testing.T) {
	tests := []struct {
		answer  ConflictResolution
		want    Policy
		wantErr error
	}{
		{Skip, SkipIfExists, nil},
		{Replace, Overwrite, nil},
		{Cancel, FailIfExists, ErrCancelled},
	}

	for _, tt := range tests {
		strategy, _ := scripted(tt.answer)
		got, err := NewResolverWithStrategy(strategy, nil).ResolveConflict("a.keymap", []byte("a"), []byte("b"))
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestResolver_ShowDiffAsksAgain(t *testing.T) {
	buf := &bytes.Buffer{}
	strategy, calls := scripted(ShowDiff, ShowDiff, Replace)

	got, err := NewResolverWithStrategy(strategy, buf).ResolveConflict("corne.conf", []byte("CONFIG_A=y\n"), []byte("CONFIG_A=n\n"))
	require.NoError(t, err)
	assert.Equal(t, Overwrite, got)
	assert.Equal(t, 3, *calls)
	assert.Equal(t, 2, strings.Count(stripANSI(buf.String()), "+CONFIG_A=n"))
}

func TestResolver_StrategyError(t *testing.T) {
	boom := errors.New("no tty")
	strategy := ConflictStrategyFunc(func(string, []byte, []byte) (ConflictResolution, error) {
		return Cancel, boom
	})

	_, err := NewResolverWithStrategy(strategy, nil).ResolveConflict("a", nil, nil)
	assert.ErrorIs(t, err, boom)
}

func TestResolver_LongDiffUsesPager(t *testing.T) {
	var old, newer strings.Builder
	for i := 0; i < 40; i++ {
		old.WriteString("old line\n")
		newer.WriteString("new line\n")
	}

	strategy, _ := scripted(Skip)
	r := NewResolverWithStrategy(strategy, nil)
	r.alwaysDiff = true
	paged := false
	r.pager = func(path, diff string) (bool, error) {
		paged = true
		return false, nil
	}

	_, err := r.ResolveConflict("big.keymap", []byte(old.String()), []byte(newer.String()))
	require.NoError(t, err)
	assert.True(t, paged)

	r.pager = func(string, string) (bool, error) { return true, nil }
	_, err = r.ResolveConflict("big.keymap", []byte(old.String()), []byte(newer.String()))
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestConflictMenuModel_Navigation(t *testing.T) {
	m := newConflictMenuModel("corne.keymap", nil)
	assert.Nil(t, m.Init())

	press := func(m conflictMenuModel, key tea.KeyType) conflictMenuModel {
		next, _ := m.Update(tea.KeyMsg{Type: key})
		return next.(conflictMenuModel)
	}

	m = press(m, tea.KeyUp)
	assert.Equal(t, 0, m.cursor, "cursor stays at the top")

	for i := 0; i < 10; i++ {
		m = press(m, tea.KeyDown)
	}
	assert.Equal(t, len(menuChoices)-1, m.cursor, "cursor stays at the bottom")

	m = press(m, tea.KeyUp)
	m = press(m, tea.KeyEnter)
	require.NotNil(t, m.selected)
	assert.Equal(t, Replace, *m.selected)
}

func TestConflictMenuModel_Shortcuts(t *testing.T) {
	tests := map[rune]ConflictResolution{'s': Skip, 'o': Replace, 'd': ShowDiff}
	for key, want := range tests {
		next, cmd := newConflictMenuModel("a", nil).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}})
		m := next.(conflictMenuModel)
		require.NotNil(t, m.selected, string(key))
		assert.Equal(t, want, *m.selected)
		assert.NotNil(t, cmd)
	}

	next, _ := newConflictMenuModel("a", nil).Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, next.(conflictMenuModel).selected, "esc cancels without a selection")
}

func TestConflictMenuModel_View(t *testing.T) {
	info := &mockFileInfo{name: "corne.keymap", size: 2048, modTime: time.Now().Add(-2 * time.Hour)}
	view := newConflictMenuModel("config/corne.keymap", info).View()

	assert.Contains(t, view, "config/corne.keymap")
	assert.Contains(t, view, "2 hours ago")
	assert.Contains(t, view, "2.0 KB")
	for _, c := range menuChoices {
		assert.Contains(t, view, c.label)
	}
}

func TestDiffViewerModel(t *testing.T) {
	m := newDiffViewerModel("a.keymap", "+added\n-removed\n")
	assert.Equal(t, "Loading diff...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(diffViewerModel)
	assert.True(t, m.ready)
	assert.Contains(t, m.View(), "a.keymap")
	assert.Contains(t, m.View(), "+added")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, next.(diffViewerModel).cancelled)
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		at   time.Time
		want string
	}{
		{now, "just now"},
		{now.Add(-1 * time.Minute), "1 minute ago"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-36 * time.Hour), "1 day ago"},
		{now.Add(-14 * 24 * time.Hour), "2 weeks ago"},
		{now.Add(-800 * 24 * time.Hour), "2 years ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatRelativeTime(tt.at))
	}
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", formatFileSize(512))
	assert.Equal(t, "1.5 KB", formatFileSize(1536))
	assert.Equal(t, "1.0 MB", formatFileSize(1024*1024))
}

type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return 0o644 }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return false }
func (m *mockFileInfo) Sys() any           { return nil }
