package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestRecordIDString(t *testing.T) {
	tests := []struct {
		name    string
		id      surrealmodels.RecordID
		want    string
		wantErr bool
	}{
		{"string id", surrealmodels.NewRecordID("voice_note", "abc-123"), "abc-123", false},
		{"integer id", surrealmodels.NewRecordID("voice_note", 42), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := recordIDString(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChatMessageRecordRejectsUnknownRole(t *testing.T) {
	rec := chatMessageRecord{ID: surrealmodels.NewRecordID(tableChatMessage, "m1"), Role: "system"}
	_, err := rec.toModel()
	assert.Error(t, err)
}

func TestVoiceNoteRecordToModel(t *testing.T) {
	now := time.Now().UTC()
	overview := "I walked."
	rec := voiceNoteRecord{
		ID:            surrealmodels.NewRecordID(tableVoiceNote, "n1"),
		UserID:        "u1",
		Title:         "Walk",
		Transcription: "I walked along the river.",
		Overview:      &overview,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	got, err := rec.toModel()
	require.NoError(t, err)
	assert.Equal(t, models.VoiceNote{
		ID: "n1", UserID: "u1", Title: "Walk", Transcription: "I walked along the river.",
		Overview: &overview, CreatedAt: now, UpdatedAt: now,
	}, got)
}

func TestWrapQueryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate", &surrealdb.QueryError{Message: "Database record `voice_note:n1` already exists"}, store.ErrConflict},
		{"conflict", fmt.Errorf("query: %w", &surrealdb.QueryError{Message: "Transaction conflict: resource busy"}), store.ErrConflict},
		{"assert", &surrealdb.QueryError{Message: "Found '' for field `user_id`, with record `voice_note:n1`, but field must conform to: $value != ''"}, store.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, wrapQueryError(tt.err), tt.want)
		})
	}

	plain := errors.New("socket closed")
	assert.Equal(t, plain, wrapQueryError(plain))
	assert.NoError(t, wrapQueryError(nil))
}
