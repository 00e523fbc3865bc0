package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/websearch/search"
)

func newSearchTool(t *testing.T, cfg search.Config) *search.Tool {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"title":"Go","snippet":"<b>Go</b> language"}]}`))
	}))
	t.Cleanup(api.Close)
	cfg.Endpoint = api.URL
	return search.New(cfg)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = search.Name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestHandleSearch(t *testing.T) {
	s := New(newSearchTool(t, search.Config{APIKey: "k", CX: "cx"}), "test", nil)

	res, err := s.HandleSearch(context.Background(), callRequest(map[string]any{"query": "golang"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var env search.Envelope
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &env))
	assert.Equal(t, []search.Result{{Title: "Go", Description: "Go language"}}, env.Results)
	assert.Equal(t, search.Instruction, env.Instruction)
}

func TestHandleSearch_ErrorsAreToolResults(t *testing.T) {
	tests := []struct {
		name string
		cfg  search.Config
		args map[string]any
		want string
	}{
		{"not configured", search.Config{}, map[string]any{"query": "golang"}, `{"error":"Google Custom Search not configured"}`},
		{"missing query", search.Config{APIKey: "k", CX: "cx"}, map[string]any{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(newSearchTool(t, tt.cfg), "test", nil)
			res, err := s.HandleSearch(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			if tt.want != "" {
				assert.JSONEq(t, tt.want, resultText(t, res))
			}
		})
	}
}

func TestServer_ListTools(t *testing.T) {
	s := New(newSearchTool(t, search.Config{}), "test", nil)
	ctx := context.Background()

	s.MCP().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.MCP().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"search_web"`)
	assert.Contains(t, string(data), `"minLength":1`)
}
