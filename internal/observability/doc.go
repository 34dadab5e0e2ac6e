// Package observability groups logging, metrics and tracing.
//
// Subpackages:
//   - logging: slog JSON logger with request/trace correlation
//   - metrics: Prometheus registry and recorders for HTTP and the crawl pipeline
//   - tracing: OpenTelemetry tracer and HTTP middleware
package observability
