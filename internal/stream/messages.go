package stream

import (
	"sync"

	"inkwell/internal/domain/models"
)

// MessageList is the local, append-only message store for the active
// conversation. An in-flight assistant message is mutated in place
// (content appended) until the stream completes; everything else changes
// only through authoritative replacement.
type MessageList struct {
	mu       sync.Mutex
	messages []models.Message
}

// NewMessageList creates an empty list.
func NewMessageList() *MessageList {
	return &MessageList{}
}

// Messages returns a copy of the current list.
func (l *MessageList) Messages() []models.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Append adds a message to the end of the list.
func (l *MessageList) Append(msg models.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// AppendDelta appends content to the message with the given id and marks
// it running. Reports false when the id is unknown locally; the caller
// drops the delta rather than guessing a target.
func (l *MessageList) AppendDelta(id, content string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.messages {
		if l.messages[i].ID == id {
			l.messages[i].Content += content
			l.messages[i].Status = models.MessageStatusRunning
			return true
		}
	}
	return false
}

// Replace swaps in the authoritative message list from the server.
func (l *MessageList) Replace(msgs []models.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = make([]models.Message, len(msgs))
	copy(l.messages, msgs)
}

// Clear empties the list, used when switching conversations.
func (l *MessageList) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
}
