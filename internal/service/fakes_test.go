package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/raphaelgruber/voicejournal/internal/llm"
	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/store"
)

// fakeModel answers by matching the system prompt; unmatched requests fail.
type fakeModel struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []llm.Request
}

func newFakeModel() *fakeModel {
	return &fakeModel{responses: map[string]string{}, errs: map[string]error{}}
}

// on registers a response for requests whose system prompt contains key.
func (f *fakeModel) on(key, response string) *fakeModel {
	f.responses[key] = response
	return f
}

func (f *fakeModel) fail(key string, err error) *fakeModel {
	f.errs[key] = err
	return f
}

func (f *fakeModel) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	for k, err := range f.errs {
		if strings.Contains(req.System, k) {
			return "", err
		}
	}
	for k, resp := range f.responses {
		if strings.Contains(req.System, k) {
			return resp, nil
		}
	}
	return "", errors.New("fake model: no response configured")
}

func (f *fakeModel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeModel) lastCall() llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// Prompt fragments identifying each generator.
const (
	keyTitle    = "titles for voice notes"
	keyOverview = "first-person summary"
	keyInsight  = "key insights"
	keyLocation = "identify places"
	keyThemes   = "recurring themes"
	keyChat     = "questions about the user's personal voice notes"
)

type fakeTranscriber struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

// failingNotes wraps a store and fails inserts.
type failingNotes struct {
	*store.Memory
	err error
}

func (f failingNotes) CreateVoiceNote(context.Context, models.VoiceNoteInput) (*models.VoiceNote, error) {
	return nil, f.err
}

// failingChat fails message inserts.
type failingChat struct {
	*store.Memory
}

func (failingChat) CreateChatMessage(context.Context, models.ChatMessageInput) (*models.ChatMessage, error) {
	return nil, errors.New("disk full")
}

// assistantFailingChat stores user messages but fails assistant replies.
type assistantFailingChat struct {
	*store.Memory
}

func (c assistantFailingChat) CreateChatMessage(ctx context.Context, in models.ChatMessageInput) (*models.ChatMessage, error) {
	if in.Role == models.RoleAssistant {
		return nil, errors.New("disk full")
	}
	return c.Memory.CreateChatMessage(ctx, in)
}

func ptr[T any](v T) *T { return &v }
