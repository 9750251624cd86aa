package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/raphaelgruber/voicejournal/internal/llm"
	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/store"
)

const (
	defaultThemeName        = "Unnamed Theme"
	defaultThemeDescription = "No description available"
)

const themesSystemPrompt = `You analyze personal voice journal entries and identify the recurring themes across them.
Respond with a JSON object of this exact shape:
{"themes": [{"theme": "2-4 word label", "description": "1-2 sentence description", "noteCount": <number of notes touching the theme>}]}
Return at most 5 themes, most prominent first. Return only the JSON object.`

// ThemeService finds recurring themes across a user's notes.
type ThemeService struct {
	notes store.NoteStore
	model LanguageModel
}

// NewThemeService creates a theme service.
func NewThemeService(notes store.NoteStore, model LanguageModel) *ThemeService {
	return &ThemeService{notes: notes, model: model}
}

// Analyze runs theme analysis over all of the user's notes.
func (s *ThemeService) Analyze(ctx context.Context, userID string) ([]models.Theme, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	notes, err := s.notes.ListVoiceNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list voice notes: %w", err)
	}

	transcriptions := make([]string, 0, len(notes))
	for _, n := range notes {
		if strings.TrimSpace(n.Transcription) != "" {
			transcriptions = append(transcriptions, n.Transcription)
		}
	}
	return s.AnalyzeTranscriptions(ctx, transcriptions)
}

// AnalyzeTranscriptions sends all transcriptions in one request and returns
// the normalized themes. A response that is not valid JSON fails the call.
func (s *ThemeService) AnalyzeTranscriptions(ctx context.Context, transcriptions []string) ([]models.Theme, error) {
	if len(transcriptions) == 0 {
		return nil, ErrNothingToAnalyze
	}

	out, err := s.model.Complete(ctx, llm.Request{
		System:      themesSystemPrompt,
		User:        buildThemesPrompt(transcriptions),
		Tier:        llm.TierChat,
		Temperature: 0.5,
		MaxTokens:   1000,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze themes: %w", err)
	}

	themes, err := parseThemes(out)
	if err != nil {
		return nil, fmt.Errorf("analyze themes: %w", err)
	}
	slog.Debug("themes analyzed", "notes", len(transcriptions), "themes", len(themes))
	return themes, nil
}

func buildThemesPrompt(transcriptions []string) string {
	var b strings.Builder
	b.WriteString("Identify the recurring themes in these voice notes:\n\n")
	for i, t := range transcriptions {
		fmt.Fprintf(&b, "Note %d: %s\n\n", i+1, strings.TrimSpace(t))
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseThemes decodes {"themes": [...]} and fills defaults for missing
// fields. A themes value that is not an array yields no themes.
func parseThemes(raw string) ([]models.Theme, error) {
	var resp struct {
		Themes json.RawMessage `json:"themes"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return nil, fmt.Errorf("parse themes response: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(resp.Themes, &entries); err != nil {
		return []models.Theme{}, nil
	}

	themes := make([]models.Theme, 0, len(entries))
	for _, e := range entries {
		var fields map[string]any
		if err := json.Unmarshal(e, &fields); err != nil {
			continue
		}
		themes = append(themes, models.Theme{
			Theme:       stringOr(fields["theme"], defaultThemeName),
			Description: stringOr(fields["description"], defaultThemeDescription),
			NoteCount:   intOrZero(fields["noteCount"]),
		})
	}
	return themes, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func stringOr(v any, def string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func intOrZero(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
