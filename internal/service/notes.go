package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/store"
)

// NoteService reads and edits a user's notes. Notes owned by someone else
// are reported as not found.
type NoteService struct {
	notes store.NoteStore
}

// NewNoteService creates a note service.
func NewNoteService(notes store.NoteStore) *NoteService {
	return &NoteService{notes: notes}
}

// List returns the user's notes, newest first.
func (s *NoteService) List(ctx context.Context, userID string) ([]models.VoiceNote, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	notes, err := s.notes.ListVoiceNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list voice notes: %w", err)
	}
	return notes, nil
}

// Get returns one of the user's notes.
func (s *NoteService) Get(ctx context.Context, userID, id string) (*models.VoiceNote, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	note, err := s.notes.GetVoiceNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get voice note: %w", err)
	}
	if note == nil || note.UserID != userID {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// Update applies patch to one of the user's notes.
func (s *NoteService) Update(ctx context.Context, userID, id string, patch models.VoiceNotePatch) (*models.VoiceNote, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if patch.Title != nil {
		t := CleanTitle(*patch.Title)
		patch.Title = &t
	}
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	note, err := s.notes.UpdateVoiceNote(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update voice note: %w", err)
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// Delete removes one of the user's notes.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	deleted, err := s.notes.DeleteVoiceNote(ctx, id)
	if err != nil {
		return fmt.Errorf("delete voice note: %w", err)
	}
	if !deleted {
		return ErrNoteNotFound
	}
	slog.Info("voice note deleted", "user_id", userID, "note_id", id)
	return nil
}
