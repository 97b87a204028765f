package logger

import (
	"context"

	"go.uber.org/zap"
)

// loggerKeyType is a private context key type to avoid collisions.
type loggerKeyType struct{}

//nolint:gochecknoglobals // Context key must be a shared singleton value.
var loggerKey loggerKeyType

// ToContext stores the provided logger in the context.
func ToContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in the context,
// falling back to the global logger when none is set.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok {
		return l
	}

	return global
}

// WithName returns a context whose logger carries the provided name segment.
func WithName(ctx context.Context, name string) context.Context {
	return ToContext(ctx, FromContext(ctx).Named(name))
}

// WithKV returns a context whose logger carries the provided key-value pairs.
func WithKV(ctx context.Context, kvs ...any) context.Context {
	return ToContext(ctx, FromContext(ctx).With(kvs...))
}
