package generator

import (
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"
)

// DiffOptions configures Diff. The zero value gives 3 context lines, 4-column
// tabs and the terminal width.
type DiffOptions struct {
	ContextLines int
	TabWidth     int
	Width        int // truncate lines beyond this many columns; 0 detects the terminal
}

var (
	diffHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	diffHunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	diffAddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	diffRemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

// Diff returns a coloured unified diff between the existing content of a file
// and the content a generation would write. It returns "" when they are equal.
func Diff(oldPath, newPath string, old, newer []byte, opts *DiffOptions) string {
	if bytes.Equal(old, newer) {
		return ""
	}
	if isBinary(old) || isBinary(newer) {
		return "Binary files differ\n"
	}

	o := DiffOptions{ContextLines: 3, TabWidth: 4}
	if opts != nil {
		if opts.ContextLines > 0 {
			o.ContextLines = opts.ContextLines
		}
		if opts.TabWidth > 0 {
			o.TabWidth = opts.TabWidth
		}
		o.Width = opts.Width
	}
	if o.Width <= 0 {
		o.Width = terminalWidth()
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(old),
		B:        splitLines(newer),
		FromFile: oldPath,
		ToFile:   newPath,
		Context:  o.ContextLines,
	})
	if err != nil || text == "" {
		return text
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		line = truncateLine(expandTabs(strings.TrimRight(line, "\r\n"), o.TabWidth), o.Width)

		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			line = diffHeaderStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			line = diffHunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			line = diffAddedStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			line = diffRemovedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// splitLines splits content into newline-terminated lines. A final line
// without a newline gets one so the diff output stays line-oriented.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n"
	return lines
}

// isBinary reports whether the first 8 KiB contain a NUL byte.
func isBinary(data []byte) bool {
	if len(data) > 8192 {
		data = data[:8192]
	}
	return bytes.IndexByte(data, 0) >= 0
}

func expandTabs(s string, tabWidth int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

func truncateLine(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width < 4 {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-3]) + "..."
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
