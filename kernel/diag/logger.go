// Package diag holds the allocator's optional diagnostics collaborators: a
// structured logger and a Prometheus metrics collector. Neither is load
// bearing: a host that wires up neither gets an allocator that runs
// silently, per the "logger is optional" contract.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// Logger provides structured, component-tagged logging. Its zero value is
// not ready for use; build one with New or use Nop for a logger that
// discards everything.
type Logger struct {
	mu        sync.Mutex
	level     Level
	component string
	output    io.Writer
	discard   bool
}

// Config configures a Logger.
type Config struct {
	Level     Level
	Component string
	Output    io.Writer
}

// New creates a logger with the given configuration.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{level: cfg.Level, component: cfg.Component, output: cfg.Output}
}

// Nop returns a logger that discards every message. This is the implementation
// used when the host passes no logger at all.
func Nop() *Logger {
	return &Logger{discard: true}
}

// Field is a key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func Any(key string, v any) Field { return Field{Key: key, Value: v} }
func Err(err error) Field         { return Field{Key: "error", Value: err} }

func (l *Logger) Debug(msg string, fields ...Field) { l.log(Debug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(Info, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(Warn, msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(Error, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...Field) {
	if l == nil || l.discard || level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(time.Now().Format("15:04:05.000"))
	b.WriteString("] [")
	b.WriteString(fmt.Sprintf("%-5s", levelNames[level]))
	b.WriteString("]")
	if l.component != "" {
		b.WriteString(" [")
		b.WriteString(l.component)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteString(" ")
		b.WriteString(f.Key)
		b.WriteString("=")
		fmt.Fprintf(&b, "%v", f.Value)
	}
	b.WriteString("\n")

	io.WriteString(l.output, b.String())
}
