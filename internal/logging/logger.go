// Package logging defines a minimal structured-logging interface used across
// the project. Implementations wrap log/slog and zerolog.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Output formats understood by New.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "token refreshed", "request_id", id, "attempt", 2)
type Logger interface {
	// Debug logs protocol-level detail (attached credentials, retries).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// New builds a Logger writing to w. format selects the backend: "text" and
// "json" use slog handlers, "console" uses zerolog's human-friendly writer.
func New(w io.Writer, level, format string) (Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewSlogText(w, level)
	case FormatJSON:
		return NewSlogJSON(w, level)
	case FormatConsole:
		return NewZerologConsole(w, level)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &SlogLogger{l: discard}
}
