package models

import (
	"encoding/json"
	"fmt"
)

// SSE event type constants for the assistant message stream
const (
	SSEEventStatus    = "status"    // Transient pipeline stage (queued/generating)
	SSEEventDelta     = "delta"     // Incremental assistant message content
	SSEEventCompleted = "completed" // Generation finished, reload authoritative state
)

// Stream stage constants carried by status events
const (
	StageQueued     = "queued"
	StageGenerating = "generating"
)

// StatusEvent surfaces the generation pipeline stage as a transient badge.
type StatusEvent struct {
	Stage string `json:"stage"`
}

// DeltaEvent carries an incremental content fragment for an in-progress
// assistant message. Content is appended to the matching message, never
// substituted for it.
type DeltaEvent struct {
	AssistantMessageID string `json:"assistant_message_id"`
	Content            string `json:"content"`
}

// CompletedEvent signals that generation finished. Clients clear transient
// status and reload the message list to reconcile anything missed.
type CompletedEvent struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

// FormatSSE formats an event for transmission:
//
//	event: event_name
//	data: {"field": "value"}
//	\n
func FormatSSE(eventType string, data interface{}) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal SSE event data: %w", err)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, string(jsonData)), nil
}

// NewStatusEvent creates a status SSE event
func NewStatusEvent(stage string) (string, error) {
	return FormatSSE(SSEEventStatus, StatusEvent{Stage: stage})
}

// NewDeltaEvent creates a delta SSE event
func NewDeltaEvent(messageID, content string) (string, error) {
	return FormatSSE(SSEEventDelta, DeltaEvent{
		AssistantMessageID: messageID,
		Content:            content,
	})
}

// NewCompletedEvent creates a completed SSE event
func NewCompletedEvent(conversationID, messageID string) (string, error) {
	return FormatSSE(SSEEventCompleted, CompletedEvent{
		ConversationID: conversationID,
		MessageID:      messageID,
	})
}
