package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskNotesInput defines the input schema for ask_notes.
type AskNotesInput struct {
	Question string `json:"question" jsonschema:"required,A question about the journal, e.g. what did I do last weekend"`
}

// NewAskNotesHandler answers from the user's notes. The exchange is stored in
// the chat history like any other turn.
func NewAskNotesHandler(deps *Dependencies) mcp.ToolHandlerFor[AskNotesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskNotesInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Question) == "" {
			return ErrorResult("Question cannot be empty", "Ask something about the journal"), nil, nil
		}
		turn, err := deps.Chat.Ask(ctx, deps.UserID, input.Question)
		if err != nil {
			deps.logger().Error("ask_notes failed", "error", err)
			return serviceError("Failed to answer question", err), nil, nil
		}
		return TextResult(turn.Answer.Content), nil, nil
	}
}

// AnalyzeThemesInput is empty; themes always cover every note.
type AnalyzeThemesInput struct{}

// NewAnalyzeThemesHandler finds recurring themes across the user's notes.
func NewAnalyzeThemesHandler(deps *Dependencies) mcp.ToolHandlerFor[AnalyzeThemesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ AnalyzeThemesInput) (*mcp.CallToolResult, any, error) {
		themes, err := deps.Themes.Analyze(ctx, deps.UserID)
		if err != nil {
			deps.logger().Error("analyze_themes failed", "error", err)
			return serviceError("Failed to analyze themes", err), nil, nil
		}
		return JSONResult(map[string]any{"themes": themes}), nil, nil
	}
}

// ExtractInsightInput defines the input schema for extract_insight.
type ExtractInsightInput struct {
	Transcription string `json:"transcription" jsonschema:"required,Text of a voice note"`
}

// NewExtractInsightHandler extracts the key insight from arbitrary text.
func NewExtractInsightHandler(deps *Dependencies) mcp.ToolHandlerFor[ExtractInsightInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ExtractInsightInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Transcription) == "" {
			return ErrorResult("Transcription cannot be empty", ""), nil, nil
		}
		insight, err := deps.Generator.KeyInsight(ctx, input.Transcription)
		if err != nil {
			return serviceError("Failed to extract insight", err), nil, nil
		}
		return TextResult(insight), nil, nil
	}
}
