// Package logctx carries a scoped logger on a context. The event bus uses it
// to hand subscribers a logger already tagged with the event name, so
// handlers log with fanout context they never assembled themselves.
package logctx

import (
	"context"

	"github.com/locksmith-pay/locksmith/internal/observability"
)

type ctxKey struct{}

// With returns a context carrying logger. A nil logger leaves ctx untouched.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger carried by ctx, or nil when there is none.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(ctxKey{}).(observability.Logger)
	return logger
}

// FromOr prefers the carried logger and falls back otherwise. Callers that
// own a component logger pass it as the fallback.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	return fallback
}
