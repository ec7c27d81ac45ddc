package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Console prints operator-facing progress lines such as "[UPLOAD] audio/song/index.m3u8".
// These lines are for humans; structured diagnostics go through the zap logger.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewConsole writes regular lines to out and [ERROR] lines to errOut.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{out: out, err: errOut}
}

// StdConsole writes to os.Stdout and os.Stderr.
func StdConsole() *Console {
	return NewConsole(os.Stdout, os.Stderr)
}

// Discard drops every line.
func Discard() *Console {
	return NewConsole(io.Discard, io.Discard)
}

func (c *Console) printf(w io.Writer, tag, format string, args ...any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(w, "[%s] %s\n", tag, fmt.Sprintf(format, args...))
}

func (c *Console) Infof(format string, args ...any) {
	if c == nil {
		return
	}
	c.printf(c.out, "INFO", format, args...)
}

func (c *Console) Uploadf(format string, args ...any) {
	if c == nil {
		return
	}
	c.printf(c.out, "UPLOAD", format, args...)
}

func (c *Console) Successf(format string, args ...any) {
	if c == nil {
		return
	}
	c.printf(c.out, "SUCCESS", format, args...)
}

func (c *Console) Errorf(format string, args ...any) {
	if c == nil {
		return
	}
	c.printf(c.err, "ERROR", format, args...)
}
