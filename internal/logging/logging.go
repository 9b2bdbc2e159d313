package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger writes structured log lines. Arguments after the message are
// key/value pairs.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a Logger writing JSON lines to stdout, or a console
// format when pretty is set.
func NewLogger(level string, pretty bool) *Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	return New(w, level)
}

// New creates a Logger on an arbitrary writer.
func New(w io.Writer, level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{zl: l.zl.With().Fields(args).Logger()}
}

// Zerolog exposes the underlying logger for integrations such as the HTTP
// access log.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.zl.Debug().Fields(args).Msg(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	l.zl.Info().Fields(args).Msg(msg)
}

// Warn logs a warning.
func (l *Logger) Warn(msg string, args ...any) {
	l.zl.Warn().Fields(args).Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.zl.Error().Fields(args).Msg(msg)
}
