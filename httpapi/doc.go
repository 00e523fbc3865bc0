// Package httpapi serves the search_web tool over HTTP.
//
// Routes:
//
//	POST /v1/tools/search_web   invoke the tool, body {"query": "..."}
//	GET  /v1/tools              tool definitions
//	ANY  /mcp                   MCP streamable HTTP transport (optional)
//	GET  /healthz /readyz       liveness and readiness probes
//	GET  /health /health/:name  detailed health
//	GET  /metrics               Prometheus exposition (optional)
//
// The /v1 and /mcp routes pass through auth.Middleware. Tool envelopes are
// always returned with status 200, including error envelopes; schema-invalid
// bodies get 400.
package httpapi
