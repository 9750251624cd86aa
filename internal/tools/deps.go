// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/raphaelgruber/voicejournal/internal/service"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Notes     *service.NoteService
	Chat      *service.ChatService
	Themes    *service.ThemeService
	Generator *service.Generator
	// UserID scopes every tool to one journal owner.
	UserID string
	Logger *slog.Logger
}

func (d *Dependencies) logger() *slog.Logger {
	if d == nil || d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
