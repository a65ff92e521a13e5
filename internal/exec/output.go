package exec

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// PrefixWriter prefixes every line written through it, e.g. with the build
// target when several builds share a terminal. Incomplete lines are held
// until their newline arrives or Flush is called.
type PrefixWriter struct {
	mu     sync.Mutex
	prefix string
	writer io.Writer
	buffer []byte
}

// NewPrefixWriter creates a writer that prefixes each line with prefix.
func NewPrefixWriter(writer io.Writer, prefix string) *PrefixWriter {
	return &PrefixWriter{prefix: prefix, writer: writer}
}

func (p *PrefixWriter) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buffer = append(p.buffer, data...)
	for {
		i := bytes.IndexByte(p.buffer, '\n')
		if i < 0 {
			break
		}
		if err := p.writeLine(p.buffer[:i+1]); err != nil {
			return 0, err
		}
		p.buffer = p.buffer[i+1:]
	}
	return len(data), nil
}

// Flush writes a held incomplete line, adding its newline.
func (p *PrefixWriter) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.buffer) == 0 {
		return nil
	}
	line := append(p.buffer, '\n')
	p.buffer = nil
	return p.writeLine(line)
}

func (p *PrefixWriter) writeLine(line []byte) error {
	out := make([]byte, 0, len(p.prefix)+len(line))
	out = append(out, p.prefix...)
	out = append(out, line...)
	_, err := p.writer.Write(out)
	return err
}

// WithPrefix returns a copy of e whose output lines start with prefix, and a
// function writing out any incomplete last line.
func (e *Executor) WithPrefix(prefix string) (*Executor, func() error) {
	stdout := NewPrefixWriter(e.stdout, prefix)
	stderr := NewPrefixWriter(e.stderr, prefix)
	cp := *e
	cp.stdout, cp.stderr = stdout, stderr
	return &cp, func() error {
		return errors.Join(stdout.Flush(), stderr.Flush())
	}
}
