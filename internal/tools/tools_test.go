package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/voicejournal/internal/llm"
	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/server"
	"github.com/raphaelgruber/voicejournal/internal/service"
	"github.com/raphaelgruber/voicejournal/internal/store"
	"github.com/raphaelgruber/voicejournal/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "mcp-user"

type replyModel struct {
	replies map[string]string
}

func (m replyModel) Complete(_ context.Context, req llm.Request) (string, error) {
	for k, v := range m.replies {
		if strings.Contains(req.System, k) {
			return v, nil
		}
	}
	return "", errors.New("unexpected prompt")
}

// connect registers the tools on a fresh server and returns a client session.
func connect(t *testing.T, userID string) (*mcp.ClientSession, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	model := replyModel{replies: map[string]string{
		"answers questions about": "You were at the lake on Sunday.",
		"recurring themes":        `{"themes":[{"theme":"Outdoors","description":"Time in nature","noteCount":2}]}`,
		"key insights":            "You should rest more.",
	}}
	deps := &tools.Dependencies{
		Notes:     service.NewNoteService(st),
		Chat:      service.NewChatService(st, st, model, time.UTC),
		Themes:    service.NewThemeService(st, model),
		Generator: service.NewGenerator(model),
		UserID:    userID,
	}

	srv := server.New("0.0.1-test", nil, nil)
	srv.Setup()
	tools.RegisterAll(srv.MCPServer(), deps)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	go func() {
		_ = srv.MCPServer().Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session, st
}

func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func seed(t *testing.T, st *store.Memory, userID, title string) *models.VoiceNote {
	t.Helper()
	n, err := st.CreateVoiceNote(context.Background(), models.VoiceNoteInput{
		UserID:        userID,
		Title:         title,
		Transcription: "Spent Sunday at the lake.",
	})
	require.NoError(t, err)
	return n
}

func TestServerInfoAndToolList(t *testing.T) {
	session, _ := connect(t, owner)

	init := session.InitializeResult()
	require.NotNil(t, init)
	assert.Equal(t, server.Name, init.ServerInfo.Name)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"ping", "list_notes", "get_note", "ask_notes", "analyze_themes", "extract_insight",
	}, names)
}

func TestPing(t *testing.T) {
	session, _ := connect(t, owner)

	text, isErr := call(t, session, "ping", map[string]any{})
	assert.False(t, isErr)
	assert.Equal(t, "pong", text)

	text, _ = call(t, session, "ping", map[string]any{"echo": "hello"})
	assert.Equal(t, "hello", text)
}

func TestPingStatus(t *testing.T) {
	session, st := connect(t, owner)
	seed(t, st, owner, "Lake")

	text, isErr := call(t, session, "ping", map[string]any{"status": true})
	require.False(t, isErr)
	assert.JSONEq(t, `{"user":"mcp-user","notes":1}`, text)
}

func TestListAndGetNotes(t *testing.T) {
	session, st := connect(t, owner)
	first := seed(t, st, owner, "Lake")
	seed(t, st, owner, "Groceries")
	other := seed(t, st, "someone-else", "Private")

	text, isErr := call(t, session, "list_notes", map[string]any{"limit": 1})
	require.False(t, isErr, text)
	var listed struct {
		Notes []struct {
			Title string `json:"title"`
		} `json:"notes"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &listed))
	assert.Equal(t, 1, listed.Count)
	assert.Equal(t, "Groceries", listed.Notes[0].Title)

	text, isErr = call(t, session, "list_notes", map[string]any{"limit": 500})
	assert.True(t, isErr)
	assert.Contains(t, text, "Limit must be 1-100")

	text, isErr = call(t, session, "get_note", map[string]any{"id": first.ID})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Spent Sunday at the lake.")

	text, isErr = call(t, session, "get_note", map[string]any{"id": other.ID})
	assert.True(t, isErr)
	assert.Contains(t, text, "Voice note not found")
}

func TestAskNotes(t *testing.T) {
	session, st := connect(t, owner)
	seed(t, st, owner, "Lake")

	text, isErr := call(t, session, "ask_notes", map[string]any{"question": "Where was I on Sunday?"})
	require.False(t, isErr, text)
	assert.Equal(t, "You were at the lake on Sunday.", text)

	history, err := st.ListChatMessages(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, isErr = call(t, session, "ask_notes", map[string]any{"question": "  "})
	assert.True(t, isErr)
}

func TestAnalyzeThemes(t *testing.T) {
	session, st := connect(t, owner)

	text, isErr := call(t, session, "analyze_themes", map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "No voice notes to analyze")

	seed(t, st, owner, "Lake")
	text, isErr = call(t, session, "analyze_themes", map[string]any{})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Outdoors")
}

func TestExtractInsight(t *testing.T) {
	session, _ := connect(t, owner)

	text, isErr := call(t, session, "extract_insight", map[string]any{"transcription": "I am always tired lately."})
	require.False(t, isErr, text)
	assert.Equal(t, "Should rest more", text)
}

func TestToolsRequireUser(t *testing.T) {
	session, _ := connect(t, "")

	text, isErr := call(t, session, "list_notes", map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "JOURNAL_MCP_USER")
}
