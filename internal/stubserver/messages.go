package stubserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/domain/models"
	"inkwell/internal/httputil"
	"inkwell/internal/stubserver/sse"
)

func (s *Server) createMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")

	var req struct {
		Role           string   `json:"role"`
		Content        string   `json:"content"`
		ContextSources []string `json:"context_sources,omitempty"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid message payload")
		return
	}
	if req.Role != models.RoleUser || req.Content == "" {
		httputil.RespondError(w, http.StatusBadRequest, "a user message with content is required")
		return
	}

	now := time.Now().UTC()
	userMsg := models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        req.Content,
		Status:         models.MessageStatusCompleted,
		CreatedAt:      now,
	}
	assistantMsg := models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Status:         models.MessageStatusQueued,
		CreatedAt:      now,
	}

	s.mu.Lock()
	s.messages[conversationID] = append(s.messages[conversationID], userMsg, assistantMsg)
	s.mu.Unlock()

	go s.generate(conversationID, assistantMsg.ID)

	httputil.RespondJSON(w, http.StatusCreated, map[string]models.Message{
		"user_message":      userMsg,
		"assistant_message": assistantMsg,
	})
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")

	s.mu.Lock()
	msgs := make([]models.Message, len(s.messages[conversationID]))
	copy(msgs, s.messages[conversationID])
	s.mu.Unlock()

	httputil.RespondJSON(w, http.StatusOK, msgs)
}

// generate plays the canned assistant pipeline: queued, generating, one
// delta per word of the reply, then completed.
func (s *Server) generate(conversationID, messageID string) {
	publish := func(event string, err error) {
		if err != nil {
			s.logger.Error("failed to format stub event", "error", err)
			return
		}
		s.hub.publish(conversationID, event)
	}

	publish(models.NewStatusEvent(models.StageQueued))
	time.Sleep(s.opts.StatusDelay)

	s.setMessageStatus(conversationID, messageID, models.MessageStatusRunning)
	publish(models.NewStatusEvent(models.StageGenerating))
	time.Sleep(s.opts.StatusDelay)

	words := strings.SplitAfter(s.opts.Reply, " ")
	for _, word := range words {
		s.appendMessageContent(conversationID, messageID, word)
		publish(models.NewDeltaEvent(messageID, word))
		time.Sleep(s.opts.DeltaDelay)
	}

	s.setMessageStatus(conversationID, messageID, models.MessageStatusCompleted)
	publish(models.NewCompletedEvent(conversationID, messageID))
}

func (s *Server) setMessageStatus(conversationID, messageID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[conversationID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Status = status
			return
		}
	}
}

func (s *Server) appendMessageContent(conversationID, messageID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[conversationID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Content += content
			return
		}
	}
}

// streamMessages serves the conversation's SSE channel: live events from
// the generation pipeline, with keepalive comments on quiet stretches.
func (s *Server) streamMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")

	writer, ok := sse.NewWriter(w)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, unsub := s.hub.subscribe(conversationID)
	defer unsub()

	s.logger.Debug("stream client attached", "conversation_id", conversationID)

	ticker := time.NewTicker(s.opts.SSE.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("stream client detached", "conversation_id", conversationID)
			return
		case event := <-events:
			if err := writer.WriteEvent(event); err != nil {
				s.logger.Debug("stream client write failed",
					"conversation_id", conversationID,
					"error", err,
				)
				return
			}
		case <-ticker.C:
			if err := writer.WriteKeepAlive(); err != nil {
				return
			}
		}
	}
}
