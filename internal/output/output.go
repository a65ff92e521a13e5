// Package output prints styled, user-facing messages for zmkgen commands.
//
// Callers never touch lipgloss directly; they pick a message kind:
//
//	output.Success("Added corne to build.yaml")
//	output.Info("Next steps:")
//	output.Step("git push")
//	output.Warn("corne_left is already in the build matrix")
//	output.Error("config repo not found")
//
// Verbose messages only print once SetVerbose(true) has been called by the
// --verbose flag.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var (
	mu          sync.Mutex
	out         io.Writer = os.Stdout
	verboseMode bool
)

// SetOutput redirects all messages. Commands point it at cmd.OutOrStdout().
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// Writer returns the current destination.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// SetVerbose enables or disables Verbose messages.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// IsVerbose reports whether verbose mode is on.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verboseMode
}

func emit(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, s)
}

// Success prints a completed operation.
func Success(msg string) {
	emit(successStyle.Render("✓ " + msg))
}

// Error prints a failure that needs user attention.
func Error(msg string) {
	emit(errorStyle.Render("✗ " + msg))
}

// Warn prints a non-fatal problem.
func Warn(msg string) {
	emit(warnStyle.Render("! " + msg))
}

// Info prints a status update or explanation.
func Info(msg string) {
	emit(infoStyle.Render("• " + msg))
}

// Step prints an indented follow-up step or sub-item.
func Step(msg string) {
	emit(stepStyle.Render("   " + msg))
}

// Verbose prints a debug message when verbose mode is on.
func Verbose(msg string) {
	if IsVerbose() {
		emit(stepStyle.Render("  » " + msg))
	}
}

// Plain prints msg without styling, for output meant to be piped.
func Plain(msg string) {
	emit(msg)
}

// Table prints rows under headers with a rounded border.
func Table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	emit(t.Render())
}

// Columns prints items top to bottom, then left to right, in as many
// columns as fit the terminal.
func Columns(items []string) {
	if len(items) == 0 {
		return
	}
	emit(columns(items, terminalWidth()))
}

func columns(items []string, width int) string {
	cell := 0
	for _, item := range items {
		cell = max(cell, lipgloss.Width(item))
	}
	cell += 2

	cols := max(1, width/cell)
	rows := (len(items) + cols - 1) / cols

	var blocks []string
	for start := 0; start < len(items); start += rows {
		end := min(start+rows, len(items))
		blocks = append(blocks, lipgloss.NewStyle().Width(cell).Render(strings.Join(items[start:end], "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
