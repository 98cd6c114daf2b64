// Package logging is the structured logger every gatekeeper component writes
// through. Components hold a child logger tagged with their module name;
// request-scoped attributes (the acting user) travel in the context.
package logging

import "context"

// Logger is a context-aware, structured logger. args are key/value pairs:
//
//	log.Warn(ctx, "link verification failed", "purpose", "reset", "user_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

type attrsKey struct{}

// ContextWith returns a copy of ctx whose log lines carry args in addition to
// any pairs already attached further up the call chain.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := contextArgs(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

func contextArgs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	args, _ := ctx.Value(attrsKey{}).([]any)
	return args
}
