// Package stream consumes the assistant message event stream: one SSE
// connection per active conversation, incremental deltas folded into the
// local message list, strict arrival-order processing.
package stream

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"inkwell/internal/api"
	"inkwell/internal/domain/models"
)

// Source is the message side of the document API: sending messages,
// building stream requests and serving authoritative reloads. The API
// client satisfies this.
type Source interface {
	CreateMessage(ctx context.Context, conversationID string, req *api.CreateMessageRequest) (*api.CreateMessageResponse, error)
	StreamRequest(ctx context.Context, conversationID string) (*http.Request, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
}

// Client manages at most one live event stream. Switching or clearing
// the active conversation closes the prior connection before anything
// else happens, so no orphaned listener ever applies events to a
// discarded conversation.
type Client struct {
	source   Source
	http     *http.Client
	messages *MessageList
	logger   *slog.Logger

	mu     sync.Mutex
	active string
	cancel context.CancelFunc
	done   chan struct{}
	stage  string
}

// NewClient creates a stream client folding events into messages. The
// HTTP client carries no timeout: SSE connections are long-lived by
// design and are torn down via context cancellation instead.
func NewClient(source Source, messages *MessageList, logger *slog.Logger) *Client {
	return &Client{
		source:   source,
		http:     &http.Client{},
		messages: messages,
		logger:   logger,
	}
}

// Stage returns the transient generation stage ("queued", "generating")
// or empty when no generation is in progress.
func (c *Client) Stage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Active returns the conversation id the client is attached to.
func (c *Client) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Switch attaches to conversationID's event stream, closing any prior
// connection first. An empty id just detaches.
func (c *Client) Switch(ctx context.Context, conversationID string) {
	c.closeCurrent()

	if conversationID == "" {
		return
	}

	streamCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.active = conversationID
	c.cancel = cancel
	c.done = done
	c.stage = ""
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.run(streamCtx, conversationID)
	}()
}

// Send posts a user message to the conversation, folds the stored user
// message and the queued assistant placeholder into the local list, and
// attaches to the conversation's event stream so the deltas that follow
// have a known target message.
func (c *Client) Send(ctx context.Context, conversationID, content string) error {
	resp, err := c.source.CreateMessage(ctx, conversationID, &api.CreateMessageRequest{
		Role:    models.RoleUser,
		Content: content,
	})
	if err != nil {
		return err
	}

	c.messages.Append(resp.UserMessage)
	c.messages.Append(resp.AssistantMessage)

	if c.Active() != conversationID {
		c.Switch(ctx, conversationID)
	}
	return nil
}

// Close detaches from the active stream and waits for the reader to
// finish. Safe to call repeatedly.
func (c *Client) Close() {
	c.closeCurrent()
}

func (c *Client) closeCurrent() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.active = ""
	c.stage = ""
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// run owns one connection. Events are processed strictly in arrival
// order; a transport error ends the stream without auto-retry (a manual
// refresh reloads authoritative state).
func (c *Client) run(ctx context.Context, conversationID string) {
	req, err := c.source.StreamRequest(ctx, conversationID)
	if err != nil {
		c.logger.Error("failed to build stream request",
			"conversation_id", conversationID,
			"error", err,
		)
		return
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("stream connection failed",
				"conversation_id", conversationID,
				"error", err,
			)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("stream rejected",
			"conversation_id", conversationID,
			"status", resp.StatusCode,
		)
		return
	}

	c.logger.Debug("stream attached", "conversation_id", conversationID)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if event != "" || data != "" {
				c.dispatch(ctx, conversationID, event, data)
			}
			event, data = "", ""
		case strings.HasPrefix(line, ":"):
			// SSE comment (keepalive), ignored
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data != "" {
				data += "\n"
			}
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		// Transport error: logged, not auto-retried.
		c.logger.Warn("stream transport error",
			"conversation_id", conversationID,
			"error", err,
		)
	}
}

// dispatch folds one event into local state. Malformed payloads are
// logged and skipped - never fatal to the stream.
func (c *Client) dispatch(ctx context.Context, conversationID, event, data string) {
	if data != "" && !gjson.Valid(data) {
		c.logger.Warn("dropping malformed stream payload",
			"conversation_id", conversationID,
			"event", event,
		)
		return
	}

	switch event {
	case models.SSEEventStatus:
		stage := gjson.Get(data, "stage").String()
		if stage == "" {
			c.logger.Warn("status event without stage, dropped",
				"conversation_id", conversationID,
			)
			return
		}
		c.mu.Lock()
		c.stage = stage
		c.mu.Unlock()

	case models.SSEEventDelta:
		id := gjson.Get(data, "assistant_message_id").String()
		content := gjson.Get(data, "content").String()
		if id == "" {
			c.logger.Warn("delta event without message id, dropped",
				"conversation_id", conversationID,
			)
			return
		}
		if !c.messages.AppendDelta(id, content) {
			// Target not known locally: drop rather than guess.
			c.logger.Debug("delta for unknown message dropped",
				"conversation_id", conversationID,
				"assistant_message_id", id,
			)
		}

	case models.SSEEventCompleted:
		c.mu.Lock()
		c.stage = ""
		c.mu.Unlock()
		// Authoritative reload reconciles anything the stream missed.
		msgs, err := c.source.ListMessages(ctx, conversationID)
		if err != nil {
			c.logger.Warn("message reload after completion failed",
				"conversation_id", conversationID,
				"error", err,
			)
			return
		}
		c.messages.Replace(msgs)

	default:
		c.logger.Debug("ignoring unknown stream event",
			"conversation_id", conversationID,
			"event", event,
		)
	}
}
