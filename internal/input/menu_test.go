package input

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func send(m *menuModel, keys ...string) *menuModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(*menuModel)
	}
	return m
}

var keyboards = []string{"corne", "Corne-ish Zen", "lily58", "sofle", "kyria"}

func TestMatchFold(t *testing.T) {
	tests := []struct {
		text   string
		fields []string
		want   bool
	}{
		{"", []string{"anything"}, true},
		{"  ", []string{"anything"}, true},
		{"CORNE", []string{"corne"}, true},
		{"zen", []string{"corne_ish_zen", "Corne-ish Zen"}, true},
		{"nano", []string{"corne", "Corne"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchFold(tt.text, tt.fields...))
		})
	}
}

func TestMenu_SelectsFocusedItem(t *testing.T) {
	m := send(newMenuModel(SelectConfig{Title: "Select a keyboard:", Items: keyboards}), "down", "down", "enter")

	assert.Equal(t, 2, m.chosen)
	assert.False(t, m.cancelled)
}

func TestMenu_FocusIsClamped(t *testing.T) {
	m := send(newMenuModel(SelectConfig{Items: keyboards}), "up", "up")
	assert.Equal(t, 0, m.focus)

	m = send(m, "end", "down")
	assert.Equal(t, len(keyboards)-1, m.focus)

	m = send(m, "home")
	assert.Equal(t, 0, m.focus)
}

func TestMenu_FilterIsCaseInsensitive(t *testing.T) {
	m := send(newMenuModel(SelectConfig{Items: keyboards}), "C", "o", "r")

	assert.Equal(t, []int{0, 1}, m.visible)

	m = send(m, "down", "enter")
	assert.Equal(t, 1, m.chosen, "index refers to the unfiltered items")
}

func TestMenu_FilterResetsFocus(t *testing.T) {
	m := send(newMenuModel(SelectConfig{Items: keyboards}), "end", "k")

	assert.Equal(t, 0, m.focus)
	assert.Equal(t, []int{4}, m.visible)

	m = send(m, "backspace")
	assert.Len(t, m.visible, len(keyboards))
}

func TestMenu_CustomFilter(t *testing.T) {
	ids := []string{"nice_nano_v2", "seeeduino_xiao_ble"}
	names := []string{"nice!nano v2", "Seeed XIAO BLE"}

	m := send(newMenuModel(SelectConfig{
		Items:  ids,
		Filter: func(i int, text string) bool { return MatchFold(text, ids[i], names[i]) },
	}), "!")

	assert.Equal(t, []int{0}, m.visible)
}

func TestMenu_EnterWithNoMatchesDoesNothing(t *testing.T) {
	m := send(newMenuModel(SelectConfig{Items: keyboards}), "x", "y", "z")

	next, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, -1, next.(*menuModel).chosen)
	assert.Contains(t, m.View(), "no matches")
}

func TestMenu_Cancel(t *testing.T) {
	m := send(newMenuModel(SelectConfig{Items: keyboards}), "esc")

	assert.True(t, m.cancelled)
	assert.Equal(t, -1, m.chosen)
}

func TestMenu_Scrolling(t *testing.T) {
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("board_%02d", i)
	}
	m := newMenuModel(SelectConfig{Items: items, Height: 5})

	view := m.View()
	assert.Contains(t, view, "> board_00")
	assert.Contains(t, view, "board_03")
	assert.NotContains(t, view, "board_04", "last row shows an ellipsis")
	assert.Contains(t, view, "...")

	m = send(m, "down", "down", "down", "down")
	assert.Equal(t, 4, m.focus)
	assert.Equal(t, 1, m.scroll)

	m = send(m, "end")
	assert.Equal(t, 19, m.focus)
	assert.Equal(t, 15, m.scroll)
	view = m.View()
	assert.Contains(t, view, "> board_19")
	assert.NotContains(t, view, "board_15", "first row shows an ellipsis")
}

func TestMenu_View(t *testing.T) {
	m := newMenuModel(SelectConfig{Title: "Select a controller:", Items: []string{"nice_nano_v2"}})
	view := m.View()

	require.True(t, strings.Contains(view, "Select a controller:"))
	assert.Contains(t, view, "Filter: ")
	assert.Contains(t, view, "> nice_nano_v2")
	assert.Contains(t, view, "[Esc: cancel]")
}

func TestSelect_NoItems(t *testing.T) {
	_, err := Select(SelectConfig{Title: "empty"})
	assert.Error(t, err)
}
