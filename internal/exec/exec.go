package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/simonhull/zmkgen/internal/logger"
)

// Executor runs external commands.
type Executor struct {
	stdout io.Writer
	stderr io.Writer
	env    []string
	dir    string

	// Replaced in tests.
	commandFunc func(ctx context.Context, name string, args ...string) *osexec.Cmd
	interactive func() bool
}

// Options configures an Executor. Nil writers default to the process streams.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Env    []string // added to the process environment, KEY=value
	Dir    string
}

// NewExecutor creates an executor. A nil opts uses the process streams and
// working directory.
func NewExecutor(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}
	e := &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		env:         opts.Env,
		dir:         opts.Dir,
		commandFunc: osexec.CommandContext,
		interactive: stderrIsTerminal,
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}
	return e
}

// Dir returns the working directory commands run in.
func (e *Executor) Dir() string {
	return e.dir
}

// WithDir returns a copy of the executor that runs commands in dir.
func (e *Executor) WithDir(dir string) *Executor {
	cp := *e
	cp.dir = dir
	return &cp
}

func (e *Executor) command(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) *osexec.Cmd {
	cmd := e.commandFunc(ctx, name, args...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	if len(e.env) > 0 {
		base := cmd.Env
		if base == nil {
			base = os.Environ()
		}
		cmd.Env = append(base, e.env...)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd
}

// Run executes a command, streaming its output to the executor's writers.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	return e.run(ctx, e.stdout, e.stderr, name, args...)
}

func (e *Executor) run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	logger.Debug("running command", logger.F("cmd", name+" "+strings.Join(args, " ")), logger.F("dir", e.dir))

	cmd := e.command(ctx, stdout, stderr, name, args...)
	err := cmd.Run()
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	case isCommandNotFound(err):
		return &NotFoundError{Command: name, Err: err}
	default:
		return fmt.Errorf("%s failed: %w", name, err)
	}
}

// Output runs a command and returns its trimmed standard output.
func (e *Executor) Output(ctx context.Context, name string, args ...string) (string, error) {
	var stdout bytes.Buffer
	if err := e.run(ctx, &stdout, e.stderr, name, args...); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunWithSpinner runs a command behind a spinner, printing its output only if
// it fails. Without a terminal it behaves like Run.
func (e *Executor) RunWithSpinner(ctx context.Context, message, name string, args ...string) error {
	if !e.interactive() {
		return e.Run(ctx, name, args...)
	}

	var captured bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- e.run(ctx, &captured, &captured, name, args...)
	}()

	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(e.stderr), tea.WithInput(nil))
	finished := make(chan struct{})
	go func() {
		_, _ = p.Run()
		close(finished)
	}()

	err := <-done
	p.Send(spinnerDoneMsg{err: err})
	select {
	case <-finished:
	case <-time.After(200 * time.Millisecond):
		p.Quit()
	}

	if err != nil {
		_, _ = e.stderr.Write(captured.Bytes())
	}
	return err
}

// LookPath reports whether name can be found on PATH.
func LookPath(name string) (string, error) {
	path, err := osexec.LookPath(name)
	if err != nil {
		return "", &NotFoundError{Command: name, Err: err}
	}
	return path, nil
}

// NotFoundError is returned when a command is not installed.
type NotFoundError struct {
	Command string
	Err     error
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("command %q not found. Please install it and try again", e.Command)
	if e.Command == "west" {
		msg += " (pip install west, see https://zmk.dev/docs/development/local-toolchain/setup)"
	}
	return msg
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func isCommandNotFound(err error) bool {
	if errors.Is(err, osexec.ErrNotFound) {
		return true
	}
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 127 {
		return true
	}
	return strings.Contains(err.Error(), "executable file not found")
}

func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

type spinnerDoneMsg struct {
	err error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return &spinnerModel{spinner: s, message: message}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return failStyle.Render("✗ "+m.message) + "\n"
		}
		return okStyle.Render("✓ "+m.message) + "\n"
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}

// Command builds a command invocation fluently.
type Command struct {
	executor   *Executor
	name       string
	args       []string
	env        []string
	dir        string
	spinnerMsg string
}

// NewCommand starts building an invocation of name on executor.
func NewCommand(executor *Executor, name string) *Command {
	return &Command{executor: executor, name: name}
}

func (c *Command) WithArgs(args ...string) *Command {
	c.args = append(c.args, args...)
	return c
}

func (c *Command) WithEnv(env ...string) *Command {
	c.env = append(c.env, env...)
	return c
}

func (c *Command) WithDir(dir string) *Command {
	c.dir = dir
	return c
}

// WithSpinner runs the command behind a spinner showing message.
func (c *Command) WithSpinner(message string) *Command {
	c.spinnerMsg = message
	return c
}

// Run executes the command.
func (c *Command) Run(ctx context.Context) error {
	e := *c.executor
	e.env = append(append([]string(nil), c.executor.env...), c.env...)
	if c.dir != "" {
		e.dir = c.dir
	}

	if c.spinnerMsg != "" {
		return e.RunWithSpinner(ctx, c.spinnerMsg, c.name, c.args...)
	}
	return e.Run(ctx, c.name, c.args...)
}

// Args returns the arguments added so far.
func (c *Command) Args() []string {
	return c.args
}

func (c *Command) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}
