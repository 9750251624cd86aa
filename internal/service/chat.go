package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/llm"
	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/store"
)

const noteDateLayout = "Monday, January 2, 2006"

const chatSystemPrompt = `You are a helpful assistant that answers questions about the user's personal voice notes.

Here are the user's voice notes, newest first:

%s

Rules:
- Only use information from these notes. If the answer cannot be found in the notes, politely say so.
- For questions about a specific date or place, first look for a note with that exact date. If there is none, use the notes from the nearest surrounding dates and say explicitly that no note matches the exact date.
- Mention the date of the note your answer comes from.
- If several notes from the same day disagree, present all of them instead of picking one.`

// ChatTurn is the persisted question and answer of one chat exchange.
type ChatTurn struct {
	Question *models.ChatMessage `json:"question"`
	Answer   *models.ChatMessage `json:"answer"`
}

// ChatService answers questions grounded in a user's notes.
type ChatService struct {
	notes    store.NoteStore
	messages store.ChatStore
	model    LanguageModel
	loc      *time.Location
}

// NewChatService creates a chat service. Note dates are rendered in loc.
func NewChatService(notes store.NoteStore, messages store.ChatStore, model LanguageModel, loc *time.Location) *ChatService {
	if loc == nil {
		loc = time.UTC
	}
	return &ChatService{notes: notes, messages: messages, model: model, loc: loc}
}

// Ask answers question from the user's notes and stores both messages. Nothing
// is stored when the completion fails.
func (s *ChatService) Ask(ctx context.Context, userID, question string) (*ChatTurn, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyMessage
	}

	notes, err := s.notes.ListVoiceNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("retrieve voice notes for context: %w", err)
	}

	answer, err := s.model.Complete(ctx, llm.Request{
		System:      fmt.Sprintf(chatSystemPrompt, BuildNoteContext(notes, s.loc)),
		User:        question,
		Tier:        llm.TierChat,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("chat completion: %w", errEmptyCompletion)
	}

	q, err := s.messages.CreateChatMessage(ctx, models.ChatMessageInput{UserID: userID, Role: models.RoleUser, Content: question})
	if err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}
	a, err := s.messages.CreateChatMessage(ctx, models.ChatMessageInput{UserID: userID, Role: models.RoleAssistant, Content: answer})
	if err != nil {
		// A question without its answer would poison later history replays.
		if _, derr := s.messages.DeleteChatMessage(context.WithoutCancel(ctx), q.ID); derr != nil {
			slog.Warn("failed to remove orphaned chat message", "id", q.ID, "error", derr)
		}
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	slog.Debug("chat answered", "user_id", userID, "notes", len(notes), "answer_len", len(answer))
	return &ChatTurn{Question: q, Answer: a}, nil
}

// History returns the user's messages, oldest first.
func (s *ChatService) History(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	msgs, err := s.messages.ListChatMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return msgs, nil
}

// Clear deletes the user's chat history and returns how many messages went.
func (s *ChatService) Clear(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	n, err := s.messages.DeleteChatMessages(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear chat history: %w", err)
	}
	slog.Info("chat history cleared", "user_id", userID, "deleted", n)
	return n, nil
}

// BuildNoteContext renders notes as Date/Location/Content blocks separated by
// "---" lines. Notes from the same day stay separate blocks.
func BuildNoteContext(notes []models.VoiceNote, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	blocks := make([]string, 0, len(notes))
	for _, n := range notes {
		var b strings.Builder
		fmt.Fprintf(&b, "Date: %s\n", n.CreatedAt.In(loc).Format(noteDateLayout))
		if n.Location != nil && strings.TrimSpace(*n.Location) != "" {
			fmt.Fprintf(&b, "Location: %s\n", strings.TrimSpace(*n.Location))
		}
		fmt.Fprintf(&b, "Content: %s", n.Transcription)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n---\n")
}
