package generator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user cancels a generation from the
// conflict menu.
var ErrCancelled = errors.New("generation cancelled")

// ConflictResolution is the decision for a destination that already exists.
type ConflictResolution int

const (
	Skip ConflictResolution = iota
	Replace
	ShowDiff
	Cancel
)

// policy maps a final decision onto the write policy that carries it out.
func (r ConflictResolution) policy() (Policy, error) {
	switch r {
	case Skip:
		return SkipIfExists, nil
	case Replace:
		return Overwrite, nil
	default:
		return FailIfExists, ErrCancelled
	}
}

// ConflictStrategy decides what to do with one conflicting file.
type ConflictStrategy interface {
	Resolve(path string, existing, newer []byte) (ConflictResolution, error)
}

// ConflictStrategyFunc adapts a function to ConflictStrategy.
type ConflictStrategyFunc func(path string, existing, newer []byte) (ConflictResolution, error)

func (f ConflictStrategyFunc) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	return f(path, existing, newer)
}

// Resolver settles Ask writes whose destination already exists. A ShowDiff
// answer prints the diff and asks again.
type Resolver struct {
	strategy   ConflictStrategy
	out        io.Writer
	alwaysDiff bool
	pager      func(path, diff string) (bool, error)
}

// NewResolver returns a resolver using the interactive menu. With showDiff
// the diff is shown before the first question.
func NewResolver(showDiff bool) *Resolver {
	return &Resolver{
		strategy:   &InteractiveStrategy{},
		out:        os.Stdout,
		alwaysDiff: showDiff,
		pager:      runDiffViewer,
	}
}

// NewResolverWithStrategy returns a resolver that asks strategy and prints
// diffs to out.
func NewResolverWithStrategy(strategy ConflictStrategy, out io.Writer) *Resolver {
	if out == nil {
		out = io.Discard
	}
	return &Resolver{strategy: strategy, out: out}
}

// ResolveConflict returns the policy to apply to path.
func (r *Resolver) ResolveConflict(path string, existing, newer []byte) (Policy, error) {
	if r.alwaysDiff {
		if err := r.showDiff(path, existing, newer); err != nil {
			return FailIfExists, err
		}
	}

	for {
		decision, err := r.strategy.Resolve(path, existing, newer)
		if err != nil {
			return FailIfExists, err
		}
		if decision != ShowDiff {
			return decision.policy()
		}
		if err := r.showDiff(path, existing, newer); err != nil {
			return FailIfExists, err
		}
	}
}

func (r *Resolver) showDiff(path string, existing, newer []byte) error {
	diff := Diff(path, path, existing, newer, nil)
	if strings.Count(diff, "\n") > 20 && r.pager != nil {
		cancelled, err := r.pager(path, diff)
		if err != nil {
			return fmt.Errorf("failed to show diff: %w", err)
		}
		if cancelled {
			return ErrCancelled
		}
		return nil
	}
	_, err := fmt.Fprint(r.out, diff)
	return err
}

var (
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
)

// InteractiveStrategy asks with a keyboard-driven menu.
type InteractiveStrategy struct{}

func (s *InteractiveStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	info, err := os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Cancel, fmt.Errorf("failed to stat file: %w", err)
	}

	final, err := tea.NewProgram(newConflictMenuModel(path, info)).Run()
	if err != nil {
		return Cancel, fmt.Errorf("failed to show menu: %w", err)
	}

	result := final.(conflictMenuModel)
	if result.selected == nil {
		return Cancel, nil
	}
	return *result.selected, nil
}

var menuChoices = []struct {
	label      string
	resolution ConflictResolution
}{
	{"Show diff and decide", ShowDiff},
	{"Skip (keep existing file)", Skip},
	{"Overwrite (replace with generated file)", Replace},
	{"Cancel generation", Cancel},
}

type conflictMenuModel struct {
	path     string
	fileInfo os.FileInfo
	cursor   int
	selected *ConflictResolution
}

func newConflictMenuModel(path string, info os.FileInfo) conflictMenuModel {
	return conflictMenuModel{path: path, fileInfo: info}
}

func (m conflictMenuModel) Init() tea.Cmd {
	return nil
}

func (m conflictMenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuChoices)-1 {
			m.cursor++
		}
	case "s":
		m.selected = resolutionPtr(Skip)
		return m, tea.Quit
	case "o":
		m.selected = resolutionPtr(Replace)
		return m, tea.Quit
	case "d":
		m.selected = resolutionPtr(ShowDiff)
		return m, tea.Quit
	case "enter":
		m.selected = resolutionPtr(menuChoices[m.cursor].resolution)
		return m, tea.Quit
	}
	return m, nil
}

func resolutionPtr(r ConflictResolution) *ConflictResolution {
	return &r
}

func (m conflictMenuModel) View() string {
	var b strings.Builder

	b.WriteString(warningStyle.Render("File already exists: ") + titleStyle.Render(m.path) + "\n")
	if m.fileInfo != nil {
		b.WriteString(mutedStyle.Render("    Last modified: ") + formatRelativeTime(m.fileInfo.ModTime()) + "\n")
		b.WriteString(mutedStyle.Render("    Size: ") + formatFileSize(m.fileInfo.Size()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("    [↑/↓] Navigate    [Enter] Select    [d/s/o] Diff/Skip/Overwrite    [q] Cancel") + "\n\n")

	for i, choice := range menuChoices {
		if i == m.cursor {
			b.WriteString("    " + selectedStyle.Render("> "+choice.label) + "\n")
			continue
		}
		b.WriteString("      " + choice.label + "\n")
	}
	return b.String()
}

// runDiffViewer shows a long diff full screen. It reports whether the user
// pressed ctrl+c to cancel the whole generation.
func runDiffViewer(path, diff string) (bool, error) {
	final, err := tea.NewProgram(newDiffViewerModel(path, diff), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	return final.(diffViewerModel).cancelled, nil
}

type diffViewerModel struct {
	path      string
	diff      string
	viewport  viewport.Model
	ready     bool
	cancelled bool
}

func newDiffViewerModel(path, diff string) diffViewerModel {
	return diffViewerModel{path: path, diff: diff}
}

func (m diffViewerModel) Init() tea.Cmd {
	return nil
}

func (m diffViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		const chrome = 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(1, msg.Height-chrome))
			m.viewport.SetContent(m.diff)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(1, msg.Height-chrome)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffViewerModel) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	rule := borderStyle.Render(strings.Repeat("─", max(0, m.viewport.Width)))
	header := titleStyle.Render("Diff: "+m.path) + mutedStyle.Render(fmt.Sprintf("  %3.f%%", m.viewport.ScrollPercent()*100))
	footer := mutedStyle.Render("[↑/↓/pgup/pgdn] Scroll    [q] Back to menu    [ctrl+c] Cancel")
	return header + "\n" + rule + "\n" + m.viewport.View() + "\n" + rule + "\n" + footer
}

// formatRelativeTime formats t relative to now, e.g. "2 hours ago".
func formatRelativeTime(t time.Time) string {
	d := time.Since(t)

	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24/7), "week")
	case d < 365*24*time.Hour:
		return plural(int(d.Hours()/24/30), "month")
	default:
		return plural(int(d.Hours()/24/365), "year")
	}
}

// formatFileSize formats a byte count, e.g. "1.5 KB".
func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
