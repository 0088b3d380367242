package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"speakersite/internal/models"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// CreateConversation inserts a conversation and returns the stored row.
func (s *Store) CreateConversation(ctx context.Context, userID *int64, title string) (*models.Conversation, error) {
	now := time.Now().UTC()
	id, err := insertID(ctx, s.db,
		`INSERT INTO conversations (user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		userID, title, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &models.Conversation{ID: id, UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Store) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	var c models.Conversation
	err := s.db.GetContext(ctx, &c, s.db.Rebind(
		`SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns a user's conversations, most recently active first.
func (s *Store) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	conversations := []models.Conversation{}
	err := s.db.SelectContext(ctx, &conversations, s.db.Rebind(
		`SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE user_id = ? ORDER BY updated_at DESC, id DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

// AddMessage appends a message and touches the conversation's updated_at.
func (s *Store) AddMessage(ctx context.Context, conversationID int64, role models.Role, content string) (*models.Message, error) {
	now := time.Now().UTC()
	id, err := insertID(ctx, s.db,
		`INSERT INTO messages (conversation_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		conversationID, role, content, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	if _, err := s.exec(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ?`, now, conversationID); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}
	return &models.Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	}, nil
}

// ListMessages returns a conversation's messages in creation order.
func (s *Store) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	messages := []models.Message{}
	err := s.db.SelectContext(ctx, &messages, s.db.Rebind(
		`SELECT id, conversation_id, role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, id ASC`),
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (s *Store) CountMessages(ctx context.Context, conversationID int64) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`), conversationID); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}
