package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/raphaelgruber/voicejournal/internal/models"
)

type messageRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const messageColumns = `id::text AS id, user_id, role::text AS role, content, created_at, updated_at`

func (r messageRow) toModel() (models.ChatMessage, error) {
	role, err := models.ParseRole(r.Role)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return models.ChatMessage{
		ID:        r.ID,
		UserID:    r.UserID,
		Role:      role,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// CreateChatMessage stores one chat message.
func (s *Store) CreateChatMessage(ctx context.Context, in models.ChatMessageInput) (msg *models.ChatMessage, err error) {
	start := time.Now()
	defer func() { s.track("create_chat_message", start, err) }()

	r, err := s.pool.Query(ctx, `
		INSERT INTO chat_messages (user_id, role, content) VALUES ($1, $2, $3)
		RETURNING `+messageColumns, in.UserID, string(in.Role), in.Content)
	if err != nil {
		return nil, fmt.Errorf("create chat message: %w", wrapPgError(err))
	}
	row, err := pgx.CollectExactlyOneRow(r, pgx.RowToStructByName[messageRow])
	if err != nil {
		return nil, fmt.Errorf("create chat message: %w", wrapPgError(err))
	}
	m, err := row.toModel()
	if err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}
	return &m, nil
}

// ListChatMessages returns a user's conversation in replay order.
func (s *Store) ListChatMessages(ctx context.Context, userID string) (msgs []models.ChatMessage, err error) {
	start := time.Now()
	defer func() { s.track("list_chat_messages", start, err) }()

	r, err := s.pool.Query(ctx, `SELECT `+messageColumns+`
		FROM chat_messages WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	rows, err := pgx.CollectRows(r, pgx.RowToStructByName[messageRow])
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	msgs = make([]models.ChatMessage, 0, len(rows))
	for _, row := range rows {
		m, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("list chat messages: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// DeleteChatMessages clears a user's history and returns the number removed.
func (s *Store) DeleteChatMessages(ctx context.Context, userID string) (n int, err error) {
	start := time.Now()
	defer func() { s.track("delete_chat_messages", start, err) }()

	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_messages WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete chat messages: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteChatMessage removes one message. Returns false if it did not exist.
func (s *Store) DeleteChatMessage(ctx context.Context, id string) (deleted bool, err error) {
	if !validUUID(id) {
		return false, nil
	}
	start := time.Now()
	defer func() { s.track("delete_chat_message", start, err) }()

	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_messages WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete chat message: %w", wrapPgError(err))
	}
	return tag.RowsAffected() > 0, nil
}
