package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// VerboseEnv turns on debug logging when set to any non-empty value
const VerboseEnv = "DIFFCHUNK_VERBOSE"

// Level represents the logging level
type Level int

const (
	// ErrorLevel logs only errors
	ErrorLevel Level = iota
	// InfoLevel logs errors and info messages
	InfoLevel
	// DebugLevel logs everything including debug messages
	DebugLevel
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case ErrorLevel:
		return "error"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel maps a level name to a Level, falling back to ErrorLevel
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	default:
		return ErrorLevel
	}
}

// Logger writes leveled messages to stderr
type Logger struct {
	level  Level
	output io.Writer
	name   string
}

// New creates a new logger with the specified level
func New(level Level) *Logger {
	return &Logger{
		level:  level,
		output: os.Stderr,
	}
}

// NewFromEnv creates a logger based on environment variable
func NewFromEnv() *Logger {
	level := ErrorLevel
	if os.Getenv(VerboseEnv) != "" {
		level = DebugLevel
	}
	return New(level)
}

// Named returns a logger that prefixes every message with name. The
// returned logger shares the level and output of l at the time of the call.
func (l *Logger) Named(name string) *Logger {
	child := *l
	if child.name != "" {
		name = child.name + "." + name
	}
	child.name = name
	return &child
}

// SetOutput sets the output writer for the logger
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// SetLevel changes the level
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// Level returns the current level
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) log(level Level, tag, format string, args ...interface{}) {
	if l == nil || l.level < level {
		return
	}
	if l.name != "" {
		format = l.name + ": " + format
	}
	_, _ = fmt.Fprintf(l.output, "["+tag+"] "+format+"\n", args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ErrorLevel, "ERROR", format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(InfoLevel, "INFO", format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DebugLevel, "DEBUG", format, args...)
}
