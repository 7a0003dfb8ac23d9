package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("sports-ticker/internal/usecase")

// startUsecaseSpan opens "usecase.<op>" as a child of the span in ctx. With
// no parent it returns ctx unchanged and a non-recording span.
func startUsecaseSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return usecaseTracer.Start(ctx, "usecase."+op, trace.WithAttributes(attrs...))
}

// startTickSpan always records: a tick from the background loop has no
// request span above it and would otherwise leave the cycle untraced.
func startTickSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return usecaseTracer.Start(ctx, "usecase."+op)
}
