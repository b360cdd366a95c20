// Package logging is the structured logger every hrscreen component writes
// through. SlogLogger backs it with log/slog; NopLogger silences tests.
package logging

import "context"

// Logger takes a message plus alternating keys and values:
//
//	log.Warn(ctx, "login rejected", "reason", "bad_password", "user_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds attributes such as "module" to every later record.
	With(args ...any) Logger
}
