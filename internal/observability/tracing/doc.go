// Package tracing provides OpenTelemetry tracing integration: the
// application tracer used by the crawl pipeline and an HTTP server
// middleware that continues W3C trace context and exposes X-Trace-Id.
package tracing
