// Package editor orchestrates one open document: the section store, the
// persistence scheduler, the drag state machine and the citation drop
// pipeline, against the remote document API.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/editor/citations"
	"inkwell/internal/editor/dragdrop"
	"inkwell/internal/editor/persist"
	"inkwell/internal/editor/sections"
	"inkwell/internal/textmetrics"
)

// ContentAPI is the slice of the document API the session consumes.
type ContentAPI interface {
	GetDocumentContent(ctx context.Context, documentID string) ([]models.Section, error)
	SaveDocumentContent(ctx context.Context, documentID string, secs []models.Section) ([]models.Section, error)
	SaveTitle(ctx context.Context, documentID, title string) (*models.Document, error)
	CreateCitation(ctx context.Context, citation *models.Citation) (*models.Citation, error)
}

// Notifier is the toast collaborator: non-blocking, user-visible
// notifications. The session consumes it, it never owns presentation.
type Notifier interface {
	Info(message string)
	Warn(message string)
	Error(message string)
}

// LogNotifier is the default Notifier, routing toasts into the log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Info(message string)  { n.Logger.Info("notify", "message", message) }
func (n LogNotifier) Warn(message string)  { n.Logger.Warn("notify", "message", message) }
func (n LogNotifier) Error(message string) { n.Logger.Error("notify", "message", message) }

// Options configures a session.
type Options struct {
	DebounceInterval int // milliseconds; 0 selects the default
	Metrics          textmetrics.Provider
	Notifier         Notifier
	Logger           *slog.Logger
}

// Session is one open document in the editor.
type Session struct {
	documentID string
	client     ContentAPI
	store      *sections.Store
	scheduler  *persist.Scheduler
	drag       *dragdrop.Controller
	tracker    *textmetrics.CaretTracker
	metrics    textmetrics.Provider
	notifier   Notifier
	logger     *slog.Logger

	mu        sync.Mutex
	doc       models.Document
	citations []models.Citation
	lastCaret int // most recent caret resolved during a citation drag
}

// NewSession creates a session for documentID. Call Load before editing.
func NewSession(documentID string, client ContentAPI, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = textmetrics.NewMonospace()
	}

	s := &Session{
		documentID: documentID,
		client:     client,
		drag:       dragdrop.NewController(),
		tracker:    &textmetrics.CaretTracker{},
		metrics:    metrics,
		notifier:   notifier,
		logger:     logger,
	}
	s.store = sections.New(documentID, nil)
	s.scheduler = persist.NewScheduler(s.save, millis(opts.DebounceInterval), logger)
	return s
}

// Load fetches the document content. An empty server response leaves the
// synthesized placeholder in place without marking the document dirty, so
// the placeholder is never persisted untouched.
func (s *Session) Load(ctx context.Context) error {
	secs, err := s.client.GetDocumentContent(ctx, s.documentID)
	if err != nil {
		return err
	}
	s.store.ApplyRemote(secs)
	s.logger.Debug("document loaded",
		"document_id", s.documentID,
		"sections", s.store.Len(),
	)
	return nil
}

// Sections returns the current ordered section list.
func (s *Session) Sections() []models.Section { return s.store.Sections() }

// SaveState returns the scheduler's dirty/saving snapshot.
func (s *Session) SaveState() persist.State { return s.scheduler.State() }

// DragState returns the drag controller's snapshot.
func (s *Session) DragState() dragdrop.State { return s.drag.State() }

// save is the scheduler's SaveFunc: snapshot, persist, reconcile. The
// canonical response goes through the store's remote-apply path so the
// reconciliation can never re-arm the debounce.
func (s *Session) save(ctx context.Context) error {
	snapshot := s.store.Sections()
	canonical, err := s.client.SaveDocumentContent(ctx, s.documentID, snapshot)
	if err != nil {
		if domain.IsTransient(err) {
			s.notifier.Error("Saving failed - your changes are kept locally and will be retried.")
		}
		return err
	}
	s.store.ApplyRemote(canonical)
	return nil
}

// EditContent applies a content edit to a text section and schedules a
// debounced save.
func (s *Session) EditContent(index int, text string) error {
	if err := s.store.UpdateContent(index, text); err != nil {
		return err
	}
	s.scheduler.MarkDirty()
	return nil
}

// SplitSection splits a section at the caret (the double-break Enter
// gesture) and schedules a save.
func (s *Session) SplitSection(index, caretStart, caretEnd int) error {
	if err := s.store.SplitOnDoubleBreak(index, caretStart, caretEnd); err != nil {
		return err
	}
	s.scheduler.MarkDirty()
	return nil
}

// InsertSectionAfter inserts a new empty text section and schedules a
// save.
func (s *Session) InsertSectionAfter(index int) error {
	if err := s.store.InsertAfter(index, ""); err != nil {
		return err
	}
	s.scheduler.MarkDirty()
	return nil
}

// DeleteSection deletes a section. The refusal cases (last remaining
// section, unconfirmed non-empty or embedded section) surface a warning
// and make no network call.
func (s *Session) DeleteSection(index int, confirmed bool) error {
	err := s.store.Delete(index, confirmed)
	if err != nil {
		if errors.Is(err, domain.ErrLastSection) {
			s.notifier.Warn("A document needs at least one section.")
		}
		return err
	}
	s.scheduler.MarkDirty()
	return nil
}

// DuplicateSection clones a section and schedules a save.
func (s *Session) DuplicateSection(index int) error {
	if err := s.store.Duplicate(index); err != nil {
		return err
	}
	s.scheduler.MarkDirty()
	return nil
}

// Blur flushes pending edits immediately, reusing the single-flight
// guard.
func (s *Session) Blur(ctx context.Context) error {
	return s.scheduler.Flush(ctx)
}

// RetrySave re-issues a failed save.
func (s *Session) RetrySave(ctx context.Context) error {
	return s.scheduler.Retry(ctx)
}

// SaveTitle persists a title change through the explicit title-save call.
func (s *Session) SaveTitle(ctx context.Context, title string) error {
	doc, err := s.client.SaveTitle(ctx, s.documentID, title)
	if err != nil {
		if domain.IsTransient(err) {
			s.notifier.Error("Saving the title failed.")
		}
		return err
	}
	s.mu.Lock()
	s.doc = *doc
	s.mu.Unlock()
	return nil
}

// Document returns the cached document header.
func (s *Session) Document() models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// --- section reorder drag ---

// BeginReorder starts dragging the section at sourceIndex.
func (s *Session) BeginReorder(sourceIndex int) error {
	return s.drag.BeginReorder(sourceIndex)
}

// HoverReorder updates the provisional drop index while dragging over
// the section at index; pointerFraction is the pointer's vertical
// position within the section's bounding box (0 top, 1 bottom).
func (s *Session) HoverReorder(index int, pointerFraction float64) {
	s.drag.HoverSection(index, pointerFraction)
}

// DropReorder completes the drag, applies the move and schedules a save.
// A drop that resolves to the source position is a no-op.
func (s *Session) DropReorder() error {
	from, to, moved := s.drag.DropReorder()
	if !moved {
		return nil
	}
	if err := s.store.Reorder(from, to); err != nil {
		return err
	}
	s.scheduler.MarkDirty()
	return nil
}

// CancelDrag resets whatever drag is in progress. Wired to drag-end and
// editor teardown so a cancelled native drag cannot leave stale state.
func (s *Session) CancelDrag() {
	s.drag.Reset()
	s.tracker.Cancel()
}

// --- embed drop ---

// BeginEmbedDrag starts an external-content drag over the gap
// drop-zones, decoding the data-transfer entries. Refused while a
// reorder drag is active.
func (s *Session) BeginEmbedDrag(entries map[string]string) error {
	payload, err := dragdrop.ParsePayload(entries)
	if err != nil {
		return err
	}
	return s.drag.BeginEmbed(payload)
}

// HoverEmbedGap highlights the gap at gapIndex as the drop target.
func (s *Session) HoverEmbedGap(gapIndex int) {
	s.drag.HoverGap(gapIndex)
}

// DropEmbed inserts an embedded section at the hovered gap and saves
// immediately (not debounced).
func (s *Session) DropEmbed(ctx context.Context) error {
	gap, payload, ok := s.drag.DropEmbed()
	if !ok {
		return nil
	}
	if err := s.store.InsertEmbedAt(gap, payload.ContentID); err != nil {
		return err
	}
	s.scheduler.MarkDirty()
	return s.scheduler.Flush(ctx)
}

// --- citation drop ---

// BeginCitationDrag starts an external-content drag aimed at a caret
// position inside section text. The remembered caret resets with each
// drag; a drop whose frames never resolved inserts at the section start
// rather than at a stale offset from a previous drag.
func (s *Session) BeginCitationDrag(entries map[string]string) error {
	payload, err := dragdrop.ParsePayload(entries)
	if err != nil {
		return err
	}
	if err := s.drag.BeginCaretDrag(payload); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastCaret = 0
	s.mu.Unlock()
	return nil
}

// HoverCitation records the hovered text section and the latest pointer
// position. Raw pointer moves may arrive faster than frames; the tracker
// keeps only the newest sample.
func (s *Session) HoverCitation(sectionIndex int, at textmetrics.Point) {
	s.drag.HoverText(sectionIndex)
	s.tracker.Update(at)
}

// ResolveCaretFrame resolves at most one pending pointer sample against
// the hovered section's text, mirroring animation-frame coalescing. The
// resolved offset feeds the caret highlight and is remembered for the
// drop.
func (s *Session) ResolveCaretFrame(width float64) (offset int, ok bool, err error) {
	st := s.drag.State()
	if st.Kind != dragdrop.KindCaretDragging || st.TargetIndex < 0 {
		return 0, false, nil
	}
	sec, err := s.store.Section(st.TargetIndex)
	if err != nil || sec.IsEmbedded() {
		return 0, false, err
	}
	offset, ok, err = s.tracker.Resolve(s.metrics, sec.Content, width)
	if ok {
		s.mu.Lock()
		s.lastCaret = offset
		s.mu.Unlock()
	}
	return offset, ok, err
}

// DropCitation merges a numbered marker into the hovered section at the
// last resolved caret, records the citation with the document API and
// saves immediately. A failed citation call keeps the local text edit
// and surfaces a retryable notification.
func (s *Session) DropCitation(ctx context.Context) error {
	sectionIndex, payload, ok := s.drag.DropCaret()
	s.tracker.Cancel()
	if !ok {
		return nil
	}
	sec, err := s.store.Section(sectionIndex)
	if err != nil {
		return err
	}
	if sec.IsEmbedded() {
		return fmt.Errorf("%w: cannot insert a citation into an embedded section", domain.ErrValidation)
	}

	s.mu.Lock()
	offset := s.lastCaret
	marker := citations.NextMarker(s.citations)
	s.mu.Unlock()

	merged, _ := citations.Merge(sec.Content, offset, marker)
	if err := s.store.UpdateContent(sectionIndex, merged); err != nil {
		return err
	}
	s.scheduler.MarkDirty()

	citation := &models.Citation{
		DocumentID:   s.documentID,
		ContentID:    payload.ContentID,
		Marker:       marker,
		Position:     offset,
		SectionIndex: sectionIndex,
	}
	created, err := s.client.CreateCitation(ctx, citation)
	if err != nil {
		// The marker stays in the text; the record can be retried.
		s.notifier.Error("Recording the citation failed.")
		s.logger.Warn("citation create failed",
			"document_id", s.documentID,
			"marker", marker,
			"error", err,
		)
	} else {
		s.mu.Lock()
		s.citations = append(s.citations, *created)
		s.mu.Unlock()
	}

	return s.scheduler.Flush(ctx)
}

// Citations returns the locally known citation records.
func (s *Session) Citations() []models.Citation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Citation, len(s.citations))
	copy(out, s.citations)
	return out
}

// Close tears the session down deterministically: pending timers and
// drag state are discarded and any in-flight save is waited out. No
// background work continues against a discarded document.
func (s *Session) Close() {
	s.scheduler.Close()
	s.CancelDrag()
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
