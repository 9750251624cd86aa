package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/voicejournal/internal/models"
)

// Memory is an in-process RecordStore used for local development and tests.
type Memory struct {
	mu       sync.RWMutex
	notes    map[string]*models.VoiceNote
	messages []models.ChatMessage
	now      func() time.Time
	last     time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		notes: make(map[string]*models.VoiceNote),
		now:   time.Now,
	}
}

// tick returns a strictly increasing timestamp so orderings stay total even
// when the clock does not advance between writes. Caller must hold mu.
func (m *Memory) tick() time.Time {
	t := m.now().UTC()
	if !t.After(m.last) {
		t = m.last.Add(time.Microsecond)
	}
	m.last = t
	return t
}

func (m *Memory) CreateVoiceNote(_ context.Context, in models.VoiceNoteInput) (*models.VoiceNote, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("create voice note: %w: empty user_id", ErrInvalid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	note := models.VoiceNote{
		ID:            uuid.New().String(),
		UserID:        in.UserID,
		Title:         in.Title,
		Transcription: in.Transcription,
		Overview:      in.Overview,
		KeyInsight:    in.KeyInsight,
		Location:      in.Location,
		Duration:      in.Duration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}.Clone()
	m.notes[note.ID] = &note
	out := note.Clone()
	return &out, nil
}

func (m *Memory) GetVoiceNote(_ context.Context, id string) (*models.VoiceNote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	note, ok := m.notes[id]
	if !ok {
		return nil, nil
	}
	out := note.Clone()
	return &out, nil
}

func (m *Memory) ListVoiceNotes(_ context.Context, userID string) ([]models.VoiceNote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notes := []models.VoiceNote{}
	for _, n := range m.notes {
		if n.UserID == userID {
			notes = append(notes, n.Clone())
		}
	}
	slices.SortFunc(notes, func(a, b models.VoiceNote) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return notes, nil
}

func (m *Memory) UpdateVoiceNote(_ context.Context, id string, patch models.VoiceNotePatch) (*models.VoiceNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	note, ok := m.notes[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(note)
	*note = note.Clone()
	note.UpdatedAt = m.tick()
	out := note.Clone()
	return &out, nil
}

func (m *Memory) DeleteVoiceNote(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[id]; !ok {
		return false, nil
	}
	delete(m.notes, id)
	return true, nil
}

func (m *Memory) CreateChatMessage(_ context.Context, in models.ChatMessageInput) (*models.ChatMessage, error) {
	if err := validateMessage(in); err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	msg := models.ChatMessage{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		Role:      in.Role,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *Memory) ListChatMessages(_ context.Context, userID string) ([]models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.ChatMessage{}
	for _, msg := range m.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	slices.SortStableFunc(out, func(a, b models.ChatMessage) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (m *Memory) DeleteChatMessages(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.messages[:0]
	deleted := 0
	for _, msg := range m.messages {
		if msg.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	m.messages = kept
	return deleted, nil
}

func (m *Memory) DeleteChatMessage(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.messages, func(msg models.ChatMessage) bool { return msg.ID == id })
	if i < 0 {
		return false, nil
	}
	m.messages = slices.Delete(m.messages, i, i+1)
	return true, nil
}

// WipeData drops every note and message.
func (m *Memory) WipeData(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = make(map[string]*models.VoiceNote)
	m.messages = nil
	return nil
}

// Close is a no-op.
func (m *Memory) Close(context.Context) error { return nil }

var (
	_ RecordStore = (*Memory)(nil)
	_ Wiper       = (*Memory)(nil)
)

func validateMessage(in models.ChatMessageInput) error {
	if in.UserID == "" {
		return fmt.Errorf("%w: empty user_id", ErrInvalid)
	}
	if _, err := models.ParseRole(string(in.Role)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: empty content", ErrInvalid)
	}
	return nil
}
