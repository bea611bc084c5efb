// Package oteltrace binds the observability.TraceCtx port to OpenTelemetry.
// Spans come from the process-global provider, so exporter setup stays a
// deployment concern and use cases only ever see the port.
package oteltrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/locksmith-pay/locksmith/internal/observability"
)

const defaultTracerName = "locksmith"

type traceCtx struct {
	tracer trace.Tracer
}

// New returns a TraceCtx named after the service. Without a configured
// provider the global default is a no-op, which is the right behavior for
// tests and bare deployments.
func New(name string) observability.TraceCtx {
	if name == "" {
		name = defaultTracerName
	}
	return &traceCtx{tracer: otel.Tracer(name)}
}

func (t *traceCtx) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
