package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/raphaelgruber/voicejournal/internal/models"
)

// CreateChatMessage stores one chat message.
func (c *Client) CreateChatMessage(ctx context.Context, in models.ChatMessageInput) (*models.ChatMessage, error) {
	rows, err := query[chatMessageRecord](ctx, c, `
		CREATE type::record("chat_message", $id) SET
			user_id = $user_id,
			role = $role,
			content = $content
		RETURN AFTER
	`, map[string]any{
		"id":      uuid.New().String(),
		"user_id": in.UserID,
		"role":    string(in.Role),
		"content": in.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create chat message: no result returned")
	}

	msg, err := rows[0].toModel()
	if err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}
	return &msg, nil
}

// ListChatMessages returns a user's conversation in replay order.
func (c *Client) ListChatMessages(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	rows, err := query[chatMessageRecord](ctx, c, `
		SELECT * FROM chat_message WHERE user_id = $user_id ORDER BY created_at ASC
	`, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	msgs, err := convertMessages(rows)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return msgs, nil
}

// DeleteChatMessages clears a user's history and returns the number removed.
func (c *Client) DeleteChatMessages(ctx context.Context, userID string) (int, error) {
	rows, err := query[chatMessageRecord](ctx, c, `
		DELETE chat_message WHERE user_id = $user_id RETURN BEFORE
	`, map[string]any{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("delete chat messages: %w", err)
	}
	return len(rows), nil
}

// DeleteChatMessage removes one message. Returns false if it did not exist.
func (c *Client) DeleteChatMessage(ctx context.Context, id string) (bool, error) {
	rows, err := query[chatMessageRecord](ctx, c, `
		DELETE type::record("chat_message", $id) RETURN BEFORE
	`, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete chat message: %w", err)
	}
	return len(rows) > 0, nil
}
