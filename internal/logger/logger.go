// Package logger is zmkgen's diagnostic log. Entries carry a level and
// key=value fields; messages meant for the user go through the output package.
// The default logger discards everything until the root command installs one
// for --verbose or --log-level.
package logger

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

var levelNames = [...]string{
	LevelDebug:  "DEBUG",
	LevelInfo:   "INFO",
	LevelWarn:   "WARN",
	LevelError:  "ERROR",
	LevelSilent: "SILENT",
}

func (l Level) String() string {
	if l < LevelDebug || l > LevelSilent {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts a level name in any case, plus "warning", "off" and "".
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch name {
	case "", "OFF":
		return LevelSilent, nil
	case "WARNING":
		return LevelWarn, nil
	}
	if i := slices.Index(levelNames[:], name); i >= 0 {
		return Level(i), nil
	}
	return LevelSilent, fmt.Errorf("unknown log level %q", s)
}

// Field is a key=value pair appended to an entry.
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

var (
	levelStyles = [...]lipgloss.Style{
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
	keyStyle = lipgloss.NewStyle().Faint(true)
)

// sink is the writer a logger and all loggers derived from it share.
type sink struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *sink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, line)
}

// Logger writes entries at or above its level. The zero value and a nil
// *Logger discard everything.
type Logger struct {
	level  Level
	sink   *sink
	fields []Field
}

// NewLogger returns a logger writing entries at level and above to out.
func NewLogger(level Level, out io.Writer) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{level: level, sink: &sink{out: out}}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return NewLogger(LevelSilent, io.Discard)
}

// Enabled reports whether an entry at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && l.sink != nil && level >= l.level && level < LevelSilent
}

// WithFields returns a logger that adds fields to each of its entries.
func (l *Logger) WithFields(fields ...Field) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{level: l.level, sink: l.sink, fields: slices.Concat(l.fields, fields)}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

// log formats "15:04:05 LEVEL msg key=value ..." with the logger's own fields
// before the entry's.
func (l *Logger) log(level Level, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", time.Now().Format(time.TimeOnly), levelStyles[level].Render(fmt.Sprintf("%-5s", level)), msg)
	for _, f := range slices.Concat(l.fields, fields) {
		fmt.Fprintf(&b, " %s%v", keyStyle.Render(f.Key+"="), f.Value)
	}
	b.WriteByte('\n')
	l.sink.write(b.String())
}

var std atomic.Pointer[Logger]

func init() {
	std.Store(Discard())
}

// SetDefault replaces the logger behind the package-level functions.
func SetDefault(l *Logger) {
	std.Store(l)
}

func Default() *Logger {
	return std.Load()
}

func Debug(msg string, fields ...Field) { Default().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().Error(msg, fields...) }
