// Package stubserver is an in-memory stand-in for the document
// collaborator: it implements the content, citation, message and search
// contract the editing core consumes, for local development and tests.
// It deliberately has no real storage - persistence engineering belongs
// to the remote collaborator, not to this module.
package stubserver

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"inkwell/internal/domain/models"
	"inkwell/internal/httputil"
	"inkwell/internal/stubserver/sse"
)

// Options tunes the stub's canned generation for tests.
type Options struct {
	StatusDelay time.Duration // pause between pipeline stages
	DeltaDelay  time.Duration // pause between content deltas
	Reply       string        // canned assistant reply; empty selects a default
	SSE         *sse.Config
}

// Server is the in-memory collaborator stub.
type Server struct {
	logger *slog.Logger
	opts   Options

	mu        sync.Mutex
	documents map[string]*models.Document
	sections  map[string][]models.Section // document id -> ordered sections
	citations map[string][]models.Citation
	messages  map[string][]models.Message // conversation id -> messages
	corpus    []models.SearchResult

	hub *hub
}

// New creates a stub server.
func New(logger *slog.Logger, opts Options) *Server {
	if opts.StatusDelay <= 0 {
		opts.StatusDelay = 20 * time.Millisecond
	}
	if opts.DeltaDelay <= 0 {
		opts.DeltaDelay = 10 * time.Millisecond
	}
	if opts.Reply == "" {
		opts.Reply = "Here is a draft suggestion based on your sections. Consider tightening the opening paragraph."
	}
	if opts.SSE == nil {
		opts.SSE = sse.DefaultConfig()
	}
	return &Server{
		logger:    logger,
		opts:      opts,
		documents: make(map[string]*models.Document),
		sections:  make(map[string][]models.Section),
		citations: make(map[string][]models.Citation),
		messages:  make(map[string][]models.Message),
		hub:       newHub(),
	}
}

// SeedDocument installs a document with the given sections.
func (s *Server) SeedDocument(doc models.Document, secs []models.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := doc
	s.documents[doc.ID] = &d
	s.sections[doc.ID] = s.canonicalizeLocked(doc.ID, secs)
}

// SeedCorpus installs the related-content search corpus.
func (s *Server) SeedCorpus(results []models.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpus = results
}

// Handler returns the stub's HTTP handler: CORS, panic recovery, then
// the Go 1.22 pattern routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthCheck)

	mux.HandleFunc("GET /documents/{id}/content", s.getContent)
	mux.HandleFunc("PUT /documents/{id}/content", s.putContent)
	mux.HandleFunc("PATCH /documents/{id}", s.patchDocument)
	mux.HandleFunc("POST /documents/{id}/citations", s.createCitation)

	mux.HandleFunc("POST /conversations/{id}/messages", s.createMessage)
	mux.HandleFunc("GET /conversations/{id}/messages", s.listMessages)
	mux.HandleFunc("GET /conversations/{id}/messages/stream", s.streamMessages)

	mux.HandleFunc("GET /search", s.search)

	var handler http.Handler = mux
	handler = s.recovery(handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: false,
	})
	return corsHandler.Handler(handler)
}

// recovery converts panics into 500 problem responses.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getContent(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")

	s.mu.Lock()
	secs, ok := s.sections[docID]
	out := make([]models.Section, len(secs))
	copy(out, secs)
	s.mu.Unlock()

	if !ok {
		// Unknown documents start empty; the editor synthesizes its
		// placeholder client-side.
		httputil.RespondJSON(w, http.StatusOK, []models.Section{})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

func (s *Server) putContent(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")

	var incoming []models.Section
	if err := httputil.ParseJSON(w, r, &incoming); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid section payload")
		return
	}
	for i := range incoming {
		incoming[i].DocumentID = docID
		if err := incoming[i].Validate(); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "section "+err.Error())
			return
		}
	}

	s.mu.Lock()
	canonical := s.canonicalizeLocked(docID, incoming)
	s.sections[docID] = canonical
	out := make([]models.Section, len(canonical))
	copy(out, canonical)
	s.mu.Unlock()

	s.logger.Debug("content saved", "document_id", docID, "sections", len(out))
	httputil.RespondJSON(w, http.StatusOK, out)
}

// canonicalizeLocked assigns ids to new sections, stamps update times and
// renumbers order indices. Caller holds s.mu.
func (s *Server) canonicalizeLocked(docID string, secs []models.Section) []models.Section {
	now := time.Now().UTC()
	out := make([]models.Section, len(secs))
	copy(out, secs)
	for i := range out {
		if out[i].ID == nil {
			id := uuid.New().String()
			out[i].ID = &id
		}
		out[i].DocumentID = docID
		out[i].OrderIndex = i
		out[i].UpdatedAt = now
	}
	return out
}

func (s *Server) patchDocument(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")

	var req struct {
		Title string `json:"title"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document payload")
		return
	}

	s.mu.Lock()
	doc, ok := s.documents[docID]
	if !ok {
		doc = &models.Document{ID: docID}
		s.documents[docID] = doc
	}
	doc.Title = req.Title
	out := *doc
	s.mu.Unlock()

	httputil.RespondJSON(w, http.StatusOK, out)
}

func (s *Server) createCitation(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")

	var citation models.Citation
	if err := httputil.ParseJSON(w, r, &citation); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid citation payload")
		return
	}
	citation.DocumentID = docID
	if err := citation.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.New().String()
	citation.ID = &id

	s.mu.Lock()
	s.citations[docID] = append(s.citations[docID], citation)
	s.mu.Unlock()

	httputil.RespondJSON(w, http.StatusCreated, citation)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))

	s.mu.Lock()
	corpus := make([]models.SearchResult, len(s.corpus))
	copy(corpus, s.corpus)
	s.mu.Unlock()

	var results []models.SearchResult
	for _, item := range corpus {
		if query == "" ||
			strings.Contains(strings.ToLower(item.Title), query) ||
			strings.Contains(strings.ToLower(item.Preview), query) {
			results = append(results, item)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ContentID < results[j].ContentID })
	if results == nil {
		results = []models.SearchResult{}
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}
