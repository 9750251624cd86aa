// Package store defines the record store contract shared by the SurrealDB,
// Postgres and in-memory backends.
package store

import (
	"context"
	"errors"

	"github.com/raphaelgruber/voicejournal/internal/models"
)

// ErrConflict indicates a write collided with an existing record or a
// concurrent transaction.
var ErrConflict = errors.New("record conflict")

// ErrInvalid indicates the backend rejected a record that violates a schema
// constraint, such as an empty owner or an unknown chat role.
var ErrInvalid = errors.New("invalid record")

// NoteStore persists voice notes.
// Lookups return nil, nil when the record does not exist.
type NoteStore interface {
	CreateVoiceNote(ctx context.Context, in models.VoiceNoteInput) (*models.VoiceNote, error)
	GetVoiceNote(ctx context.Context, id string) (*models.VoiceNote, error)
	// ListVoiceNotes returns the user's notes, newest first.
	ListVoiceNotes(ctx context.Context, userID string) ([]models.VoiceNote, error)
	UpdateVoiceNote(ctx context.Context, id string, patch models.VoiceNotePatch) (*models.VoiceNote, error)
	DeleteVoiceNote(ctx context.Context, id string) (bool, error)
}

// ChatStore persists chat messages.
type ChatStore interface {
	CreateChatMessage(ctx context.Context, in models.ChatMessageInput) (*models.ChatMessage, error)
	// ListChatMessages returns the user's messages, oldest first.
	ListChatMessages(ctx context.Context, userID string) ([]models.ChatMessage, error)
	DeleteChatMessages(ctx context.Context, userID string) (int, error)
	// DeleteChatMessage removes one message. Returns false if it did not exist.
	DeleteChatMessage(ctx context.Context, id string) (bool, error)
}

// RecordStore is a complete backend.
type RecordStore interface {
	NoteStore
	ChatStore
	Close(ctx context.Context) error
}

// Wiper is implemented by backends that can drop all records, for test
// environments.
type Wiper interface {
	WipeData(ctx context.Context) error
}
