package server

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/voicejournal/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"short", "abc", 10, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdefghij", 6, "abc..."},
		{"tiny max", "abcdef", 2, "ab"},
		{"multibyte boundary", "aöööö", 5, "a..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.maxLen))
		})
	}
}

func TestTruncateKeepsLimit(t *testing.T) {
	got := truncate(strings.Repeat("x", 1000), maxArgLogLen)
	assert.Len(t, got, maxArgLogLen)
}

type echoInput struct {
	Text string `json:"text"`
	Fail bool   `json:"fail,omitempty"`
}

func TestLoggingMiddlewareRecordsToolCalls(t *testing.T) {
	mc := metrics.NewCollector(nil)
	srv := New("0.0.1-test", nil, mc)
	srv.Setup()

	mcp.AddTool(srv.MCPServer(), &mcp.Tool{Name: "echo", Description: "Echo text back"},
		func(_ context.Context, _ *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, any, error) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: in.Text}},
				IsError: in.Fail,
			}, nil, nil
		})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	go func() { _ = srv.MCPServer().Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	_, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "echo", Arguments: map[string]any{"text": "hi"}})
	require.NoError(t, err)
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "echo", Arguments: map[string]any{"text": "no", "fail": true}})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	op := mc.Snapshot().Operations[metrics.OpToolCall]
	require.NotNil(t, op)
	assert.Equal(t, int64(2), op.Count)
	assert.Equal(t, int64(1), op.Errors)
}

func TestToolNameIgnoresOtherRequests(t *testing.T) {
	assert.Empty(t, toolName(nil))
}
