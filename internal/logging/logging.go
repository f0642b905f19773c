// Package logging prints the timestamped, colored progress lines shown by the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger writes one colored line per message.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool
	quiet bool
	now   func() time.Time
}

// New creates a logger writing to stdout.
func New(debug, quiet bool) *Logger {
	return &Logger{out: os.Stdout, debug: debug, quiet: quiet, now: time.Now}
}

// NewWriter creates a logger writing to w.
func NewWriter(w io.Writer, debug, quiet bool) *Logger {
	l := New(debug, quiet)
	l.out = w
	return l
}

// Discard returns a logger that prints nothing.
func Discard() *Logger {
	return NewWriter(io.Discard, false, true)
}

func (l *Logger) log(message string, c *color.Color) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := l.now().Format("15:04:05")
	c.Fprintf(l.out, "[%s] %s\n", timestamp, message)
}

// Info prints progress information.
func (l *Logger) Info(format string, args ...any) {
	if l == nil || l.quiet {
		return
	}
	l.log(fmt.Sprintf(format, args...), color.New(color.FgCyan))
}

// Success prints a completed step.
func (l *Logger) Success(format string, args ...any) {
	if l == nil || l.quiet {
		return
	}
	l.log(fmt.Sprintf(format, args...), color.New(color.FgGreen))
}

// Warn prints a recoverable problem.
func (l *Logger) Warn(format string, args ...any) {
	if l == nil || l.quiet {
		return
	}
	l.log(fmt.Sprintf(format, args...), color.New(color.FgYellow))
}

// Error prints a failure. Errors are printed even when quiet.
func (l *Logger) Error(format string, args ...any) {
	l.log(fmt.Sprintf(format, args...), color.New(color.FgRed))
}

// Debug prints only when debug output is enabled.
func (l *Logger) Debug(format string, args ...any) {
	if l == nil || !l.debug {
		return
	}
	l.log(fmt.Sprintf(format, args...), color.New(color.FgHiBlack))
}

// IsDebug reports whether debug output is enabled.
func (l *Logger) IsDebug() bool {
	return l != nil && l.debug
}
