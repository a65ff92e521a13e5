package input

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
)

const (
	defaultMenuHeight = 10
	menuControls      = "[↑↓: select] [Enter: confirm] [Esc: cancel]"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	ellipsisStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	controlsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// MatchFold reports whether text, trimmed and case folded, occurs in any of
// fields. Empty text matches everything.
func MatchFold(text string, fields ...string) bool {
	fold := cases.Fold()
	text = fold.String(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(fold.String(f), text) {
			return true
		}
	}
	return false
}

// Select shows a filterable menu on the terminal and returns the index of
// the chosen item.
func Select(cfg SelectConfig) (int, error) {
	if len(cfg.Items) == 0 {
		return -1, errors.New("nothing to choose from")
	}

	p := tea.NewProgram(newMenuModel(cfg), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return -1, err
	}
	m := final.(*menuModel)
	if m.cancelled || m.chosen < 0 {
		return -1, ErrCancelled
	}
	return m.chosen, nil
}

type menuModel struct {
	title   string
	items   []string
	match   func(index int, text string) bool
	height  int
	filter  textinput.Model
	visible []int // indexes into items that pass the filter
	focus   int   // position in visible
	scroll  int   // first visible row

	chosen    int
	cancelled bool
}

func newMenuModel(cfg SelectConfig) *menuModel {
	ti := textinput.New()
	ti.Prompt = "Filter: "
	ti.Placeholder = "type to search"
	ti.Focus()

	m := &menuModel{
		title:  cfg.Title,
		items:  cfg.Items,
		match:  cfg.Filter,
		height: cfg.Height,
		filter: ti,
		chosen: -1,
	}
	if m.match == nil {
		m.match = func(i int, text string) bool { return MatchFold(text, m.items[i]) }
	}
	if m.height <= 0 {
		m.height = defaultMenuHeight
	}
	m.refilter()
	return m
}

func (m *menuModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "enter":
		if len(m.visible) == 0 {
			return m, nil
		}
		m.chosen = m.visible[m.focus]
		return m, tea.Quit
	case "up", "ctrl+p":
		m.move(-1)
	case "down", "ctrl+n":
		m.move(1)
	case "pgup":
		m.move(-m.height)
	case "pgdown":
		m.move(m.height)
	case "home":
		m.move(-len(m.visible))
	case "end":
		m.move(len(m.visible))
	default:
		before := m.filter.Value()
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			m.refilter()
		}
		return m, cmd
	}
	return m, nil
}

func (m *menuModel) refilter() {
	text := m.filter.Value()
	m.visible = m.visible[:0]
	for i := range m.items {
		if m.match(i, text) {
			m.visible = append(m.visible, i)
		}
	}
	m.focus = 0
	m.scroll = 0
}

func (m *menuModel) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.focus = min(max(m.focus+delta, 0), len(m.visible)-1)
	m.updateScroll()
}

func (m *menuModel) displayCount() int {
	return min(len(m.visible), m.height)
}

// updateScroll keeps one row of context between the focus and the edge of
// the window, since edge rows show "..." when more items are hidden.
func (m *menuModel) updateScroll() {
	count := len(m.visible)
	display := m.displayCount()
	if count <= display {
		m.scroll = 0
		return
	}

	first := m.scroll
	last := first + display - 1
	switch {
	case m.focus <= first:
		m.scroll = max(0, m.focus-1)
	case m.focus >= last:
		m.scroll = min(count-1, m.focus+1) - (display - 1)
	}
}

func (m *menuModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n")

	display := m.displayCount()
	if display == 0 {
		b.WriteString(ellipsisStyle.Render("  no matches"))
		b.WriteString("\n")
	}
	for row := 0; row < display; row++ {
		pos := m.scroll + row
		atStart := m.scroll == 0
		atEnd := m.scroll+display >= len(m.visible)
		more := (!atStart && row == 0) || (!atEnd && row == display-1)

		switch {
		case more:
			b.WriteString(ellipsisStyle.Render("  ..."))
		case pos == m.focus:
			b.WriteString(focusStyle.Render("> " + m.items[m.visible[pos]]))
		default:
			b.WriteString("  " + m.items[m.visible[pos]])
		}
		b.WriteString("\n")
	}

	b.WriteString(controlsStyle.Render(menuControls))
	return b.String()
}
