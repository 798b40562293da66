// Package logging defines the structured logger used by the identity core.
// The only implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key-value pairs, e.g.:
//
//	log.Info(ctx, "user created", "user_id", id, "role", role)
type Logger interface {
	// Debug logs detail that is only useful while tracing a problem.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs a state change such as a login or a created account.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a refused operation or another condition an operator
	// should notice.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure of the process itself.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value
	// pairs.
	With(args ...any) Logger
}
