package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/llm"
	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNoteContext(t *testing.T) {
	vienna, err := time.LoadLocation("Europe/Vienna")
	require.NoError(t, err)

	notes := []models.VoiceNote{
		{Transcription: "Evening swim.", Location: ptr("Alte Donau"), CreatedAt: time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)},
		{Transcription: "Morning coffee.", CreatedAt: time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC)},
		{Transcription: "Late night idea.", CreatedAt: time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)},
	}

	got := BuildNoteContext(notes, vienna)
	want := strings.Join([]string{
		"Date: Friday, March 15, 2024\nLocation: Alte Donau\nContent: Evening swim.",
		"Date: Friday, March 15, 2024\nContent: Morning coffee.",
		"Date: Friday, March 15, 2024\nContent: Late night idea.",
	}, "\n---\n")
	assert.Equal(t, want, got, "23:30 UTC is already the next day in Vienna")

	assert.Empty(t, BuildNoteContext(nil, nil))
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	_, err := st.CreateVoiceNote(ctx, models.VoiceNoteInput{UserID: "u1", Title: "Run", Transcription: "Ran 10k by the river."})
	require.NoError(t, err)
	_, err = st.CreateVoiceNote(ctx, models.VoiceNoteInput{UserID: "u2", Title: "Secret", Transcription: "Private thoughts."})
	require.NoError(t, err)

	model := newFakeModel().on(keyChat, "  You ran 10k by the river.  ")
	svc := NewChatService(st, st, model, time.UTC)

	turn, err := svc.Ask(ctx, "u1", "  How far did I run?  ")
	require.NoError(t, err)
	assert.Equal(t, "How far did I run?", turn.Question.Content)
	assert.Equal(t, models.RoleUser, turn.Question.Role)
	assert.Equal(t, "You ran 10k by the river.", turn.Answer.Content)
	assert.Equal(t, models.RoleAssistant, turn.Answer.Role)

	req := model.lastCall()
	assert.Equal(t, llm.TierChat, req.Tier)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, 500, req.MaxTokens)
	assert.Equal(t, "How far did I run?", req.User)
	assert.Contains(t, req.System, "Content: Ran 10k by the river.")
	assert.NotContains(t, req.System, "Private thoughts.")

	history, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
}

func TestAskWithoutNotesStillCallsModel(t *testing.T) {
	model := newFakeModel().on(keyChat, "I couldn't find anything in your notes.")
	svc := NewChatService(store.NewMemory(), store.NewMemory(), model, nil)

	turn, err := svc.Ask(context.Background(), "u1", "What did I do yesterday?")
	require.NoError(t, err)
	assert.NotEmpty(t, turn.Answer.Content)
	assert.Equal(t, 1, model.callCount())
}

func TestAskValidation(t *testing.T) {
	model := newFakeModel()
	svc := NewChatService(store.NewMemory(), store.NewMemory(), model, nil)

	_, err := svc.Ask(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Ask(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, model.callCount())
}

func TestAskProviderFailurePersistsNothing(t *testing.T) {
	st := store.NewMemory()
	svc := NewChatService(st, st, newFakeModel().fail(keyChat, errors.New("timeout")), nil)

	_, err := svc.Ask(context.Background(), "u1", "hello")
	require.Error(t, err)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAskPersistFailure(t *testing.T) {
	st := store.NewMemory()
	svc := NewChatService(st, failingChat{Memory: st}, newFakeModel().on(keyChat, "ok"), nil)

	_, err := svc.Ask(context.Background(), "u1", "hello")
	assert.ErrorContains(t, err, "save user message")
}

func TestAskAssistantPersistFailureLeavesNoOrphan(t *testing.T) {
	st := store.NewMemory()
	svc := NewChatService(st, assistantFailingChat{Memory: st}, newFakeModel().on(keyChat, "ok"), nil)

	_, err := svc.Ask(context.Background(), "u1", "hello")
	assert.ErrorContains(t, err, "save assistant message")

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, history, "user message is removed when the reply cannot be saved")
}

func TestClearOnlyAffectsUser(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewChatService(st, st, newFakeModel().on(keyChat, "answer"), nil)

	_, err := svc.Ask(ctx, "u1", "q1")
	require.NoError(t, err)
	_, err = svc.Ask(ctx, "u2", "q2")
	require.NoError(t, err)

	n, err := svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	h1, _ := svc.History(ctx, "u1")
	h2, _ := svc.History(ctx, "u2")
	assert.Empty(t, h1)
	assert.Len(t, h2, 2)
}
