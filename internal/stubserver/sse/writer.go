package sse

import (
	"fmt"
	"net/http"
)

// Writer writes pre-formatted SSE events to one client connection,
// flushing after every write so events arrive incrementally.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares a response for event streaming and returns the
// writer, or ok=false when the connection cannot stream.
func NewWriter(w http.ResponseWriter) (*Writer, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	return &Writer{w: w, flusher: flusher}, true
}

// WriteEvent writes one formatted SSE event and flushes.
func (s *Writer) WriteEvent(event string) error {
	if _, err := fmt.Fprint(s.w, event); err != nil {
		return fmt.Errorf("write event failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive writes an SSE comment (": keepalive") and flushes.
// SSE spec: lines starting with : are comments, ignored by clients.
func (s *Writer) WriteKeepAlive() error {
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}
