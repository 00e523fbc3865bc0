// Package observe provides the tracing, metrics and structured logging used by
// the search tool and its transports.
//
// Observer owns the OpenTelemetry providers. Middleware wraps a tool call with
// a span, execution metrics and a log line. Logger writes one JSON object per
// line and redacts credential-bearing fields.
package observe
