package models

import "time"

// DefaultConversationTitle is used when a conversation is created without a title.
const DefaultConversationTitle = "New Conversation"

// Conversation groups an append-only sequence of messages.
// UserID is nil for conversations started without a session.
type Conversation struct {
	ID        int64     `db:"id" json:"id"`
	UserID    *int64    `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
