package tools

import (
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/raphaelgruber/voicejournal/internal/service"
)

// ErrorResult creates a tool error result with optional recovery hint.
// If hint is non-empty, formats as "{msg}. {hint}".
// Returns IsError=true so the client model can see the error and self-correct.
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	text := msg
	if hint != "" {
		text = msg + ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// JSONResult renders v as indented JSON text.
func JSONResult(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult("Failed to encode result", "")
	}
	return TextResult(string(b))
}

// serviceError turns a service failure into a tool error with a hint.
func serviceError(msg string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return ErrorResult(msg, "Set JOURNAL_MCP_USER to the journal owner's id")
	case errors.Is(err, service.ErrNoteNotFound):
		return ErrorResult("Voice note not found", "Use list_notes to find valid ids")
	case errors.Is(err, service.ErrNothingToAnalyze):
		return ErrorResult("No voice notes to analyze", "Record a few notes first")
	case errors.Is(err, config.ErrMissingCredential):
		return ErrorResult(msg, err.Error())
	default:
		return ErrorResult(msg, "The language model or database may be unavailable")
	}
}
