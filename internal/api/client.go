// Package api is the HTTP client for the document collaborator: content
// load/save, citations, messages and related-content search. The server
// owns persistence; this client only speaks the REST contract and maps
// failures into the domain error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/httputil"
)

// Client talks to the document API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
	logger  *slog.Logger
}

// NewClient creates a client for the given base URL. The transport
// timeout is bounded but generous; no per-call deadline is enforced
// beyond it.
func NewClient(baseURL string, tokens auth.TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		logger:  logger,
	}
}

// StreamRequest builds the SSE request for a conversation's message
// stream; the stream package owns the connection lifecycle.
func (c *Client) StreamRequest(ctx context.Context, conversationID string) (*http.Request, error) {
	u := fmt.Sprintf("%s/conversations/%s/messages/stream", c.baseURL, url.PathEscape(conversationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	auth.Inject(req, c.tokens)
	return req, nil
}

// GetDocumentContent fetches the ordered section list for a document.
func (c *Client) GetDocumentContent(ctx context.Context, documentID string) ([]models.Section, error) {
	var secs []models.Section
	path := fmt.Sprintf("/documents/%s/content", url.PathEscape(documentID))
	if err := c.doJSON(ctx, "load", http.MethodGet, path, nil, &secs); err != nil {
		return nil, err
	}
	if err := validateSections(secs); err != nil {
		return nil, err
	}
	return secs, nil
}

// SaveDocumentContent persists the full section list and returns the
// canonical sections the server stored. The server is the source of
// truth after every successful save.
func (c *Client) SaveDocumentContent(ctx context.Context, documentID string, secs []models.Section) ([]models.Section, error) {
	var canonical []models.Section
	path := fmt.Sprintf("/documents/%s/content", url.PathEscape(documentID))
	if err := c.doJSON(ctx, "save", http.MethodPut, path, secs, &canonical); err != nil {
		return nil, err
	}
	if err := validateSections(canonical); err != nil {
		return nil, err
	}
	return canonical, nil
}

// SaveTitle persists a document title change.
func (c *Client) SaveTitle(ctx context.Context, documentID, title string) (*models.Document, error) {
	var doc models.Document
	path := fmt.Sprintf("/documents/%s", url.PathEscape(documentID))
	body := map[string]string{"title": title}
	if err := c.doJSON(ctx, "save-title", http.MethodPatch, path, body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateCitation records a citation marker with the document API.
func (c *Client) CreateCitation(ctx context.Context, citation *models.Citation) (*models.Citation, error) {
	if err := citation.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	var created models.Citation
	path := fmt.Sprintf("/documents/%s/citations", url.PathEscape(citation.DocumentID))
	if err := c.doJSON(ctx, "citation", http.MethodPost, path, citation, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateMessageRequest is the send-message payload.
type CreateMessageRequest struct {
	Role           string   `json:"role"`
	Content        string   `json:"content"`
	ContextSources []string `json:"context_sources,omitempty"`
}

// CreateMessageResponse returns the stored user message and the queued
// assistant message whose id the stream deltas will reference.
type CreateMessageResponse struct {
	UserMessage      models.Message `json:"user_message"`
	AssistantMessage models.Message `json:"assistant_message"`
}

// CreateMessage posts a message to a conversation.
func (c *Client) CreateMessage(ctx context.Context, conversationID string, req *CreateMessageRequest) (*CreateMessageResponse, error) {
	var resp CreateMessageResponse
	path := fmt.Sprintf("/conversations/%s/messages", url.PathEscape(conversationID))
	if err := c.doJSON(ctx, "message", http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListMessages fetches the authoritative message list for a conversation.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	path := fmt.Sprintf("/conversations/%s/messages", url.PathEscape(conversationID))
	if err := c.doJSON(ctx, "messages", http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SearchContent queries related content. Staleness handling for
// overlapping queries lives in the search package, not here.
func (c *Client) SearchContent(ctx context.Context, query string) ([]models.SearchResult, error) {
	var results []models.SearchResult
	path := "/search?q=" + url.QueryEscape(query)
	if err := c.doJSON(ctx, "search", http.MethodGet, path, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// doJSON performs one JSON request/response cycle. Network failures and
// retryable server statuses come back as TransientError; other statuses
// come back as the decoded RemoteError.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	auth.Inject(req, c.tokens)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debug("document api call",
			"op", op,
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := httputil.DecodeProblem(resp)
		if remote.Retryable() {
			return &domain.TransientError{Op: op, Err: remote}
		}
		return remote
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed %s response: %v", domain.ErrValidation, op, err)
	}
	return nil
}

// validateSections runs the schema validation over a decoded section
// list; a payload that breaks the text-XOR-embedded invariant is treated
// as malformed rather than applied.
func validateSections(secs []models.Section) error {
	for i := range secs {
		if err := secs[i].Validate(); err != nil {
			return fmt.Errorf("%w: section %d: %v", domain.ErrValidation, i, err)
		}
	}
	return nil
}
