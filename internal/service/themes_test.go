package service

import (
	"context"
	"errors"
	"testing"

	"github.com/raphaelgruber/voicejournal/internal/llm"
	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThemes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []models.Theme
	}{
		{
			name: "complete entries",
			raw:  `{"themes":[{"theme":"Career Change","description":"Thinking about a new job.","noteCount":3}]}`,
			want: []models.Theme{{Theme: "Career Change", Description: "Thinking about a new job.", NoteCount: 3}},
		},
		{
			name: "missing fields get defaults",
			raw:  `{"themes":[{"noteCount":"2"},{"theme":"  ","description":"Sleep","noteCount":"many"}]}`,
			want: []models.Theme{
				{Theme: defaultThemeName, Description: defaultThemeDescription, NoteCount: 2},
				{Theme: defaultThemeName, Description: "Sleep", NoteCount: 0},
			},
		},
		{
			name: "themes not an array",
			raw:  `{"themes":{"theme":"x"}}`,
			want: []models.Theme{},
		},
		{
			name: "themes missing",
			raw:  `{}`,
			want: []models.Theme{},
		},
		{
			name: "code fence",
			raw:  "```json\n{\"themes\":[{\"theme\":\"Health\",\"description\":\"Running.\",\"noteCount\":1}]}\n```",
			want: []models.Theme{{Theme: "Health", Description: "Running.", NoteCount: 1}},
		},
		{
			name: "non-object entries skipped",
			raw:  `{"themes":["x",{"theme":"Family"}]}`,
			want: []models.Theme{{Theme: "Family", Description: defaultThemeDescription, NoteCount: 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseThemes(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseThemesMalformed(t *testing.T) {
	got, err := parseThemes("Here are your themes: career, health")
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestAnalyzeTranscriptions(t *testing.T) {
	model := newFakeModel().on(keyThemes, `{"themes":[{"theme":"Work","description":"Job stress.","noteCount":2}]}`)
	svc := NewThemeService(store.NewMemory(), model)

	themes, err := svc.AnalyzeTranscriptions(context.Background(), []string{"Work was hard.", "Boss called again."})
	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, "Work", themes[0].Theme)

	req := model.lastCall()
	assert.True(t, req.JSON)
	assert.Equal(t, llm.TierChat, req.Tier)
	assert.Contains(t, req.User, "Note 1: Work was hard.")
	assert.Contains(t, req.User, "Note 2: Boss called again.")
}

func TestAnalyzeTranscriptionsErrors(t *testing.T) {
	providerErr := errors.New("429 too many requests")
	tests := []struct {
		name  string
		model *fakeModel
		input []string
		want  error
	}{
		{"nothing to analyze", newFakeModel(), nil, ErrNothingToAnalyze},
		{"provider failure", newFakeModel().fail(keyThemes, providerErr), []string{"a"}, providerErr},
		{"malformed json", newFakeModel().on(keyThemes, "{not json"), []string{"a"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			themes, err := NewThemeService(store.NewMemory(), tt.model).AnalyzeTranscriptions(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, themes)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestAnalyzeLoadsUserNotes(t *testing.T) {
	ctx := context.Background()
	notes := store.NewMemory()
	for _, in := range []models.VoiceNoteInput{
		{UserID: "u1", Title: "a", Transcription: "First note"},
		{UserID: "u1", Title: "b", Transcription: "Second note"},
		{UserID: "u2", Title: "c", Transcription: "Someone else"},
	} {
		_, err := notes.CreateVoiceNote(ctx, in)
		require.NoError(t, err)
	}
	model := newFakeModel().on(keyThemes, `{"themes":[]}`)

	themes, err := NewThemeService(notes, model).Analyze(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, themes)
	req := model.lastCall()
	assert.Contains(t, req.User, "Second note")
	assert.NotContains(t, req.User, "Someone else")

	_, err = NewThemeService(notes, model).Analyze(ctx, "u3")
	assert.ErrorIs(t, err, ErrNothingToAnalyze)
}
