package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Test tool - responds with pong or echoes input",
	}, NewPingHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List voice journal notes, newest first, with title, overview, key insight and location",
	}, NewListNotesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_note",
		Description: "Retrieve a voice note by id including its full transcription",
	}, NewGetNoteHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_notes",
		Description: "Answer a question using only the contents of the voice journal",
	}, NewAskNotesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_themes",
		Description: "Identify recurring themes across all voice notes",
	}, NewAnalyzeThemesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_insight",
		Description: "Extract the single most important insight from a transcription",
	}, NewExtractInsightHandler(deps))
}
