// Package logging defines the structured logging interface the server
// programs against. The concrete implementation wraps slog, but nothing
// outside this package depends on that.
package logging

import "context"

// Logger logs structured, context-aware messages. Variadic args are
// alternating keys and values:
//
//	log.Info(ctx, "listening", "addr", addr)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying the given key/value pairs
	// on every record.
	With(args ...any) Logger
}
