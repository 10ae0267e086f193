package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LogLevel orders status messages.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	SuccessLevel
	WarningLevel
	ErrorLevel
)

var levelTags = map[LogLevel]struct {
	tag   string
	color func(...any) string
}{
	DebugLevel:   {"debug", Gray},
	InfoLevel:    {"info", Blue},
	SuccessLevel: {"ok", Green},
	WarningLevel: {"warn", Yellow},
	ErrorLevel:   {"error", Red},
}

// CLILogger prints short status lines for the person at the terminal. The
// compiler's structured log is separate.
type CLILogger struct {
	mu     sync.Mutex
	out    io.Writer
	level  LogLevel
	colors bool
}

// LoggerOption configures a CLILogger.
type LoggerOption func(*CLILogger)

// NewCLILogger creates a logger writing info and above to stderr.
func NewCLILogger(opts ...LoggerOption) *CLILogger {
	l := &CLILogger{out: os.Stderr, level: InfoLevel, colors: colorsEnabled()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithOutput sets the writer.
func WithOutput(w io.Writer) LoggerOption {
	return func(l *CLILogger) { l.out = w }
}

// WithLevel sets the minimum level printed.
func WithLevel(level LogLevel) LoggerOption {
	return func(l *CLILogger) { l.level = level }
}

// WithColors turns colored tags on or off.
func WithColors(enabled bool) LoggerOption {
	return func(l *CLILogger) { l.colors = enabled }
}

func (l *CLILogger) Debug(format string, args ...any)   { l.printf(DebugLevel, format, args...) }
func (l *CLILogger) Info(format string, args ...any)    { l.printf(InfoLevel, format, args...) }
func (l *CLILogger) Success(format string, args ...any) { l.printf(SuccessLevel, format, args...) }
func (l *CLILogger) Warning(format string, args ...any) { l.printf(WarningLevel, format, args...) }
func (l *CLILogger) Error(format string, args ...any)   { l.printf(ErrorLevel, format, args...) }

// SetLevel changes the minimum level printed.
func (l *CLILogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *CLILogger) printf(level LogLevel, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	t := levelTags[level]
	tag := "[" + t.tag + "]"
	if l.colors {
		tag = t.color(tag)
	}
	fmt.Fprintf(l.out, "%s %s\n", tag, msg)
}
