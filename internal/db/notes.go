package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/raphaelgruber/voicejournal/internal/models"
)

// CreateVoiceNote inserts a note under a fresh UUID key.
func (c *Client) CreateVoiceNote(ctx context.Context, in models.VoiceNoteInput) (*models.VoiceNote, error) {
	rows, err := query[voiceNoteRecord](ctx, c, `
		CREATE type::record("voice_note", $id) SET
			user_id = $user_id,
			title = $title,
			transcription = $transcription,
			overview = $overview,
			key_insight = $key_insight,
			location = $location,
			duration = $duration
		RETURN AFTER
	`, map[string]any{
		"id":            uuid.New().String(),
		"user_id":       in.UserID,
		"title":         in.Title,
		"transcription": in.Transcription,
		"overview":      in.Overview,
		"key_insight":   in.KeyInsight,
		"location":      in.Location,
		"duration":      in.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("create voice note: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create voice note: no result returned")
	}

	note, err := rows[0].toModel()
	if err != nil {
		return nil, fmt.Errorf("create voice note: %w", err)
	}
	return &note, nil
}

// GetVoiceNote retrieves a note by ID. Returns nil if not found.
func (c *Client) GetVoiceNote(ctx context.Context, id string) (*models.VoiceNote, error) {
	rows, err := query[voiceNoteRecord](ctx, c, `
		SELECT * FROM type::record("voice_note", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get voice note: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	note, err := rows[0].toModel()
	if err != nil {
		return nil, fmt.Errorf("get voice note: %w", err)
	}
	return &note, nil
}

// ListVoiceNotes returns a user's notes, newest first.
func (c *Client) ListVoiceNotes(ctx context.Context, userID string) ([]models.VoiceNote, error) {
	rows, err := query[voiceNoteRecord](ctx, c, `
		SELECT * FROM voice_note WHERE user_id = $user_id ORDER BY created_at DESC
	`, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list voice notes: %w", err)
	}

	notes, err := convertNotes(rows)
	if err != nil {
		return nil, fmt.Errorf("list voice notes: %w", err)
	}
	return notes, nil
}

// UpdateVoiceNote applies the set fields of patch. Returns nil if the note
// does not exist.
func (c *Client) UpdateVoiceNote(ctx context.Context, id string, patch models.VoiceNotePatch) (*models.VoiceNote, error) {
	if patch.IsEmpty() {
		return c.GetVoiceNote(ctx, id)
	}

	sets, vars := patchClauses(patch)
	vars["id"] = id

	// UPDATE (unlike UPSERT) leaves missing records alone and returns no rows.
	sql := fmt.Sprintf(`
		UPDATE type::record("voice_note", $id) SET %s RETURN AFTER
	`, strings.Join(sets, ", "))

	rows, err := query[voiceNoteRecord](ctx, c, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("update voice note: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	note, err := rows[0].toModel()
	if err != nil {
		return nil, fmt.Errorf("update voice note: %w", err)
	}
	return &note, nil
}

// DeleteVoiceNote removes a note. Returns false if it did not exist.
func (c *Client) DeleteVoiceNote(ctx context.Context, id string) (bool, error) {
	rows, err := query[voiceNoteRecord](ctx, c, `
		DELETE type::record("voice_note", $id) RETURN BEFORE
	`, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete voice note: %w", err)
	}
	return len(rows) > 0, nil
}

// patchClauses builds SET assignments for the non-nil patch fields.
func patchClauses(p models.VoiceNotePatch) ([]string, map[string]any) {
	var sets []string
	vars := map[string]any{}
	add := func(field string, v *string) {
		if v == nil {
			return
		}
		sets = append(sets, fmt.Sprintf("%s = $%s", field, field))
		vars[field] = *v
	}
	add("title", p.Title)
	add("transcription", p.Transcription)
	add("overview", p.Overview)
	add("key_insight", p.KeyInsight)
	add("location", p.Location)
	return sets, vars
}
