// Package mcpserver exposes the search_web tool over the Model Context
// Protocol, on stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jonwraymond/websearch/observe"
	"github.com/jonwraymond/websearch/search"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "websearch"

// Server is an MCP server with search_web registered.
type Server struct {
	mcp    *server.MCPServer
	tool   *search.Tool
	logger observe.Logger
}

// New creates a Server for tool.
func New(tool *search.Tool, version string, logger observe.Logger) *Server {
	if logger == nil {
		logger = observe.NopLogger()
	}
	s := &Server{
		mcp: server.NewMCPServer(ServerName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		tool:   tool,
		logger: logger,
	}

	def := tool.Definition()
	s.mcp.AddTool(mcp.NewToolWithRawSchema(def.Name, def.Description, def.InputSchema), s.HandleSearch)
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// HandleSearch answers a tools/call for search_web. The text content is
// the envelope JSON; error envelopes set isError. Protocol-level errors are
// never returned: every outcome is a tool result.
func (s *Server) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(search.Envelope{Error: err.Error()}.String()), nil
	}

	env, err := s.tool.InvokeJSON(ctx, raw)
	if err != nil {
		s.logger.Warn(ctx, "rejected tool arguments", observe.Field{Key: "error", Value: err.Error()})
	}
	if env.IsError() {
		return mcp.NewToolResultError(env.String()), nil
	}
	return mcp.NewToolResultText(env.String()), nil
}

// ServeStdio serves JSON-RPC on in/out until ctx is cancelled or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info(ctx, "mcp stdio server started")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// HTTPHandler returns a streamable HTTP transport for the server.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}
