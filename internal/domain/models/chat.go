package models

import "time"

// Message status constants
const (
	MessageStatusQueued    = "queued"
	MessageStatusRunning   = "running"
	MessageStatusCompleted = "completed"
	MessageStatusFailed    = "failed"
)

// Message role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is an assistant chat session, optionally pinned to a document.
type Conversation struct {
	ID         string    `json:"id"`
	Title      *string   `json:"title,omitempty"`
	DocumentID *string   `json:"document_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Message is one turn in a conversation. Messages are append-only per
// conversation; an in-flight assistant message is mutated in place
// (content appended) until its status reaches completed.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// InFlight reports whether the message is still being generated.
func (m *Message) InFlight() bool {
	return m.Status == MessageStatusQueued || m.Status == MessageStatusRunning
}
