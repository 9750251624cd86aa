package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/raphaelgruber/voicejournal/internal/llm"
)

// DefaultTitle is used when no title was supplied and generation failed.
const DefaultTitle = "Untitled Voice Note"

// NoLocation is the model's answer when a transcription names no place.
const NoLocation = "No location mentioned"

const (
	titleSystemPrompt = "You are a helpful assistant that creates concise, descriptive titles for voice notes. " +
		"The title should be brief (5 words or less) but descriptive of the content."

	overviewSystemPrompt = "You summarize personal voice notes. Write a single first-person summary of 15-25 words, " +
		"as if the note creator were describing the note themselves. Return only the summary."

	insightSystemPrompt = "You extract concise key insights from personal voice notes. Your insights should be direct, " +
		"specific, and brief (typically 10-20 words). Use second-person perspective, addressing the note creator " +
		"directly with 'you' or imperative verbs. Never use phrases like 'the key insight is' or third-person " +
		"references. Start with action verbs or 'You need to/should' when appropriate. Focus on actionable advice, " +
		"main ideas, or critical observations that speak directly to the note creator. The insight should be clear " +
		"enough to be understood as a standalone statement."

	locationSystemPrompt = "You identify places in personal voice notes. Reply with only the name of the location " +
		"where the note was recorded or the main place it talks about, for example \"Central Park, New York\". " +
		"If no location is mentioned, reply exactly: " + NoLocation
)

// Generator derives note metadata from a transcription.
type Generator struct {
	model LanguageModel
}

// NewGenerator creates a generator backed by model.
func NewGenerator(model LanguageModel) *Generator {
	return &Generator{model: model}
}

func (g *Generator) complete(ctx context.Context, req llm.Request) (string, error) {
	out, err := g.model.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errEmptyCompletion
	}
	return out, nil
}

// Title generates a short title of at most five words.
func (g *Generator) Title(ctx context.Context, transcription string) (string, error) {
	if strings.TrimSpace(transcription) == "" {
		return "", ErrEmptyTranscription
	}
	out, err := g.complete(ctx, llm.Request{
		System:      titleSystemPrompt,
		User:        fmt.Sprintf("Create a short, descriptive title for this voice note transcription: \"%s\"", transcription),
		Tier:        llm.TierFast,
		Temperature: 0.5,
		MaxTokens:   50,
	})
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}
	title := CleanTitle(out)
	if title == "" {
		return "", fmt.Errorf("generate title: %w", errEmptyCompletion)
	}
	return title, nil
}

// Overview generates a first-person 15-25 word summary.
func (g *Generator) Overview(ctx context.Context, transcription string) (string, error) {
	if strings.TrimSpace(transcription) == "" {
		return "", ErrEmptyTranscription
	}
	out, err := g.complete(ctx, llm.Request{
		System:      overviewSystemPrompt,
		User:        fmt.Sprintf("Summarize this voice note transcription in the first person: \"%s\"", transcription),
		Tier:        llm.TierFast,
		Temperature: 0.5,
		MaxTokens:   100,
	})
	if err != nil {
		return "", fmt.Errorf("generate overview: %w", err)
	}
	return stripQuotes(out), nil
}

// KeyInsight extracts the single most important insight as a short directive.
func (g *Generator) KeyInsight(ctx context.Context, transcription string) (string, error) {
	if strings.TrimSpace(transcription) == "" {
		return "", ErrEmptyTranscription
	}
	out, err := g.complete(ctx, llm.Request{
		System: insightSystemPrompt,
		User: fmt.Sprintf("Extract the single most important insight from this voice note transcription, "+
			"addressing me directly in a concise but informative way: \"%s\"", transcription),
		Tier:        llm.TierFast,
		Temperature: 0.3,
		MaxTokens:   100,
	})
	if err != nil {
		return "", fmt.Errorf("extract insight: %w", err)
	}
	insight := CleanInsight(out)
	if insight == "" {
		return "", fmt.Errorf("extract insight: %w", errEmptyCompletion)
	}
	return insight, nil
}

// Location extracts the place a note mentions. found is false, with a nil
// error, when the model reports that no location is mentioned.
func (g *Generator) Location(ctx context.Context, transcription string) (location string, found bool, err error) {
	if strings.TrimSpace(transcription) == "" {
		return "", false, ErrEmptyTranscription
	}
	out, err := g.complete(ctx, llm.Request{
		System:      locationSystemPrompt,
		User:        fmt.Sprintf("What location is mentioned in this voice note transcription? \"%s\"", transcription),
		Tier:        llm.TierFast,
		Temperature: 0,
		MaxTokens:   30,
	})
	if err != nil {
		return "", false, fmt.Errorf("extract location: %w", err)
	}
	loc := strings.TrimSuffix(stripQuotes(out), ".")
	if strings.EqualFold(strings.TrimSpace(loc), NoLocation) {
		slog.Debug("no location in transcription")
		return "", false, nil
	}
	return strings.TrimSpace(loc), true, nil
}

// CleanTitle strips surrounding whitespace and one pair of surrounding quotes.
// It is idempotent on titles without nested quotes.
func CleanTitle(title string) string {
	return stripQuotes(title)
}

var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'“':  '”',
	'‘':  '’',
	'`':  '`',
}

// stripQuotes removes one pair of matching surrounding quote characters.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	first, size := utf8.DecodeRuneInString(s)
	closing, ok := quotePairs[first]
	if !ok || len(s) <= size {
		return s
	}
	last, lastSize := utf8.DecodeLastRuneInString(s)
	if last != closing {
		return s
	}
	return strings.TrimSpace(s[size : len(s)-lastSize])
}

type insightRule struct {
	re   *regexp.Regexp
	repl string
}

// insightRules are applied in order; each strips meta phrasing from the front
// of a model-produced insight.
var insightRules = []insightRule{
	{regexp.MustCompile(`(?i)^(the key insight( is)?|the main point( is)?|the insight( is)?|you (say|mention)|according to you)[ :]*that[ :]*`), ""},
	{regexp.MustCompile(`(?i)^(in (your|this) voice note|(your|this) voice note|the voice note|the note),? `), ""},
	{regexp.MustCompile(`(?i)^(the (key|main|important) (insight|point|takeaway) is )`), ""},
	{regexp.MustCompile(`(?i)^(key insight: |insight: |main point: )`), ""},
	{regexp.MustCompile(`(?i)^you should `), "Should "},
	{regexp.MustCompile(`(?i)^you need to `), "Need to "},
}

// CleanInsight normalizes a generated insight: meta phrasing removed, first
// letter capitalized, one trailing period dropped.
func CleanInsight(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range insightRules {
		s = r.re.ReplaceAllLiteralString(s, r.repl)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(first)) + s[size:]
	return strings.TrimSuffix(s, ".")
}
