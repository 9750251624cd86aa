package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListNotesInput defines the input schema for list_notes.
type ListNotesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max notes 1-100, default 20"`
}

// noteSummary is the list_notes view of a note, without the transcription.
type noteSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Overview   string    `json:"overview,omitempty"`
	KeyInsight string    `json:"keyInsight,omitempty"`
	Location   string    `json:"location,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewListNotesHandler lists the user's notes, newest first.
func NewListNotesHandler(deps *Dependencies) mcp.ToolHandlerFor[ListNotesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListNotesInput) (*mcp.CallToolResult, any, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			return ErrorResult("Limit must be 1-100", "Reduce limit value"), nil, nil
		}

		notes, err := deps.Notes.List(ctx, deps.UserID)
		if err != nil {
			deps.logger().Error("list notes failed", "error", err)
			return serviceError("Failed to list voice notes", err), nil, nil
		}
		if len(notes) > limit {
			notes = notes[:limit]
		}

		out := make([]noteSummary, 0, len(notes))
		for _, n := range notes {
			out = append(out, noteSummary{
				ID:         n.ID,
				Title:      n.Title,
				Overview:   deref(n.Overview),
				KeyInsight: deref(n.KeyInsight),
				Location:   deref(n.Location),
				CreatedAt:  n.CreatedAt,
			})
		}
		deps.logger().Info("list_notes completed", "count", len(out))
		return JSONResult(map[string]any{"notes": out, "count": len(out)}), nil, nil
	}
}

// GetNoteInput defines the input schema for get_note.
type GetNoteInput struct {
	ID string `json:"id" jsonschema:"required,The voice note id"`
}

// NewGetNoteHandler returns one note with its full transcription.
func NewGetNoteHandler(deps *Dependencies) mcp.ToolHandlerFor[GetNoteInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetNoteInput) (*mcp.CallToolResult, any, error) {
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return ErrorResult("ID cannot be empty", "Use list_notes to find valid ids"), nil, nil
		}
		note, err := deps.Notes.Get(ctx, deps.UserID, id)
		if err != nil {
			return serviceError(fmt.Sprintf("Failed to get voice note %s", id), err), nil, nil
		}
		return JSONResult(note), nil, nil
	}
}
