package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/raphaelgruber/voicejournal/internal/models"
)

const noteColumns = `id::text AS id, user_id, title, transcription, overview, key_insight,
	location, duration, created_at, updated_at`

type noteRow struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Title         string    `db:"title"`
	Transcription string    `db:"transcription"`
	Overview      *string   `db:"overview"`
	KeyInsight    *string   `db:"key_insight"`
	Location      *string   `db:"location"`
	Duration      *int32    `db:"duration"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r noteRow) toModel() models.VoiceNote {
	n := models.VoiceNote{
		ID:            r.ID,
		UserID:        r.UserID,
		Title:         r.Title,
		Transcription: r.Transcription,
		Overview:      r.Overview,
		KeyInsight:    r.KeyInsight,
		Location:      r.Location,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Duration != nil {
		d := int(*r.Duration)
		n.Duration = &d
	}
	return n
}

func (s *Store) queryNotes(ctx context.Context, op, sql string, args ...any) (rows []noteRow, err error) {
	start := time.Now()
	defer func() { s.track(op, start, err) }()

	r, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapPgError(err)
	}
	rows, err = pgx.CollectRows(r, pgx.RowToStructByName[noteRow])
	if err != nil {
		return nil, wrapPgError(err)
	}
	return rows, nil
}

// CreateVoiceNote inserts a note.
func (s *Store) CreateVoiceNote(ctx context.Context, in models.VoiceNoteInput) (*models.VoiceNote, error) {
	var duration *int32
	if in.Duration != nil {
		d := int32(*in.Duration)
		duration = &d
	}

	rows, err := s.queryNotes(ctx, "create_voice_note", `
		INSERT INTO voice_notes (user_id, title, transcription, overview, key_insight, location, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+noteColumns,
		in.UserID, in.Title, in.Transcription, in.Overview, in.KeyInsight, in.Location, duration)
	if err != nil {
		return nil, fmt.Errorf("create voice note: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create voice note: no result returned")
	}
	n := rows[0].toModel()
	return &n, nil
}

// GetVoiceNote retrieves a note by ID. Returns nil if not found or if id is
// not a valid UUID.
func (s *Store) GetVoiceNote(ctx context.Context, id string) (*models.VoiceNote, error) {
	if !validUUID(id) {
		return nil, nil
	}
	rows, err := s.queryNotes(ctx, "get_voice_note",
		`SELECT `+noteColumns+` FROM voice_notes WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get voice note: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	n := rows[0].toModel()
	return &n, nil
}

// ListVoiceNotes returns a user's notes, newest first.
func (s *Store) ListVoiceNotes(ctx context.Context, userID string) ([]models.VoiceNote, error) {
	rows, err := s.queryNotes(ctx, "list_voice_notes",
		`SELECT `+noteColumns+` FROM voice_notes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list voice notes: %w", err)
	}
	notes := make([]models.VoiceNote, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, r.toModel())
	}
	return notes, nil
}

// UpdateVoiceNote applies the set fields of patch and refreshes updated_at.
// Returns nil if the note does not exist.
func (s *Store) UpdateVoiceNote(ctx context.Context, id string, patch models.VoiceNotePatch) (*models.VoiceNote, error) {
	if !validUUID(id) {
		return nil, nil
	}
	if patch.IsEmpty() {
		return s.GetVoiceNote(ctx, id)
	}

	sets, args := patchAssignments(patch)
	args = append(args, id)
	sql := fmt.Sprintf(`UPDATE voice_notes SET %s, updated_at = clock_timestamp()
		WHERE id = $%d RETURNING %s`, strings.Join(sets, ", "), len(args), noteColumns)

	rows, err := s.queryNotes(ctx, "update_voice_note", sql, args...)
	if err != nil {
		return nil, fmt.Errorf("update voice note: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	n := rows[0].toModel()
	return &n, nil
}

// DeleteVoiceNote removes a note. Returns false if it did not exist.
func (s *Store) DeleteVoiceNote(ctx context.Context, id string) (deleted bool, err error) {
	if !validUUID(id) {
		return false, nil
	}
	start := time.Now()
	defer func() { s.track("delete_voice_note", start, err) }()

	tag, err := s.pool.Exec(ctx, `DELETE FROM voice_notes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete voice note: %w", wrapPgError(err))
	}
	return tag.RowsAffected() > 0, nil
}

// patchAssignments builds numbered SET assignments for the non-nil fields.
func patchAssignments(p models.VoiceNotePatch) ([]string, []any) {
	var sets []string
	var args []any
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("title", p.Title)
	add("transcription", p.Transcription)
	add("overview", p.Overview)
	add("key_insight", p.KeyInsight)
	add("location", p.Location)
	return sets, args
}
