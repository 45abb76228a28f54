// Package search serializes related-content queries with a monotonically
// increasing sequence token so a late-arriving response from a superseded
// query never clobbers a newer one.
package search

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"inkwell/internal/domain/models"
)

// Backend performs the actual search call (the document API client).
type Backend interface {
	SearchContent(ctx context.Context, query string) ([]models.SearchResult, error)
}

// Session issues queries for one search box. Each query takes the next
// sequence token; results are delivered only when their token is still
// the latest at arrival time.
type Session struct {
	backend Backend
	logger  *slog.Logger
	seq     atomic.Uint64
	wg      sync.WaitGroup
}

// NewSession creates a search session.
func NewSession(backend Backend, logger *slog.Logger) *Session {
	return &Session{backend: backend, logger: logger}
}

// Do runs the query asynchronously. The deliver callback receives the
// results (or the search error) unless a newer query superseded this one
// while it was in flight, in which case the response is discarded.
func (s *Session) Do(ctx context.Context, query string, deliver func([]models.SearchResult, error)) {
	token := s.seq.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		results, err := s.backend.SearchContent(ctx, query)
		if s.seq.Load() != token {
			if s.logger != nil {
				s.logger.Debug("discarding stale search response",
					"query", query,
					"token", token,
					"latest", s.seq.Load(),
				)
			}
			return
		}
		deliver(results, err)
	}()
}

// Wait blocks until all issued queries have finished, delivered or not.
// Used on teardown and in tests.
func (s *Session) Wait() {
	s.wg.Wait()
}
