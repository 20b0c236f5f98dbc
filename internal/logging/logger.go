package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is a small leveled logger used by the tools. Output goes to the
// writer given to New (stderr in the binaries) so stdout carries only results.
type Logger struct {
	l     *slog.Logger
	level *slog.LevelVar
}

// New creates a logger tagged with the program name. When json is true, records
// are written as JSON lines instead of logfmt text.
func New(w io.Writer, prog string, json bool) *Logger {
	level := new(slog.LevelVar)
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{l: slog.New(h).With("prog", prog), level: level}
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(s string) {
	l.level.Set(ParseLevel(s))
}

func (l *Logger) Info(msg string) {
	l.l.Info(msg)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.l.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.l.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.l.Error(fmt.Sprintf(format, args...))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
