package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("sports-ticker/internal/interfaces/httpapi")

// startHandlerSpan opens a child span for a handler. Requests that otelhttp
// filtered out (health probes) have no parent and get a non-recording span.
func startHandlerSpan(r *http.Request, handler string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return apiTracer.Start(ctx, "httpapi.Handler."+handler,
		trace.WithAttributes(attribute.String("http.route", r.Pattern)),
	)
}
