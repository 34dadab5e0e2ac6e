package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "webwatch"

// GetTracer returns the application tracer from the current global provider.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "crawl.source")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
