package db

import (
	"fmt"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/models"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const (
	tableVoiceNote   = "voice_note"
	tableChatMessage = "chat_message"
)

// voiceNoteRecord is the SurrealDB row shape of a voice note.
type voiceNoteRecord struct {
	ID            surrealmodels.RecordID `json:"id"`
	UserID        string                 `json:"user_id"`
	Title         string                 `json:"title"`
	Transcription string                 `json:"transcription"`
	Overview      *string                `json:"overview,omitempty"`
	KeyInsight    *string                `json:"key_insight,omitempty"`
	Location      *string                `json:"location,omitempty"`
	Duration      *int                   `json:"duration,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func (r voiceNoteRecord) toModel() (models.VoiceNote, error) {
	id, err := recordIDString(r.ID)
	if err != nil {
		return models.VoiceNote{}, err
	}
	return models.VoiceNote{
		ID:            id,
		UserID:        r.UserID,
		Title:         r.Title,
		Transcription: r.Transcription,
		Overview:      r.Overview,
		KeyInsight:    r.KeyInsight,
		Location:      r.Location,
		Duration:      r.Duration,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

// chatMessageRecord is the SurrealDB row shape of a chat message.
type chatMessageRecord struct {
	ID        surrealmodels.RecordID `json:"id"`
	UserID    string                 `json:"user_id"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (r chatMessageRecord) toModel() (models.ChatMessage, error) {
	id, err := recordIDString(r.ID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	role, err := models.ParseRole(r.Role)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return models.ChatMessage{
		ID:        id,
		UserID:    r.UserID,
		Role:      role,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// recordIDString extracts the string key of a RecordID. Records created by
// this package always use UUID string keys.
func recordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

func convertNotes(rows []voiceNoteRecord) ([]models.VoiceNote, error) {
	notes := make([]models.VoiceNote, 0, len(rows))
	for _, r := range rows {
		n, err := r.toModel()
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func convertMessages(rows []chatMessageRecord) ([]models.ChatMessage, error) {
	msgs := make([]models.ChatMessage, 0, len(rows))
	for _, r := range rows {
		m, err := r.toModel()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
