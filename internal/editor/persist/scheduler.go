// Package persist debounces local edits into at-most-one in-flight save
// against the document API.
package persist

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce is the fixed pause after the last edit before a save is
// issued.
const DefaultDebounce = 1000 * time.Millisecond

// SaveFunc performs one save of the current document state. The closure
// is expected to snapshot the section list, call the document API and
// reconcile the canonical response through the store's remote-apply path.
type SaveFunc func(ctx context.Context) error

// Kind is the scheduler's externally visible state.
type Kind int

const (
	Clean Kind = iota
	Dirty
	Saving
	Failed
)

func (k Kind) String() string {
	switch k {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of the scheduler.
type State struct {
	Kind  Kind
	Dirty bool // unsaved local edits exist (also true alongside Saving/Failed)
	Err   error
}

// Scheduler tracks dirty/saving state for one open document. Saves are
// single-flight: a trigger while one is outstanding is absorbed into the
// dirty flag and captured by a later cycle rather than issued
// concurrently. A failed save is retried only by a subsequent edit or an
// explicit Retry.
type Scheduler struct {
	mu       sync.Mutex
	kind     Kind
	dirty    bool
	lastErr  error
	timer    *time.Timer
	closed   bool
	inflight sync.WaitGroup

	interval time.Duration
	save     SaveFunc
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler around the given save function. An
// interval of 0 selects DefaultDebounce.
func NewScheduler(save SaveFunc, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		kind:     Clean,
		interval: interval,
		save:     save,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// State returns the current snapshot.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Kind: s.kind, Dirty: s.dirty, Err: s.lastErr}
}

// MarkDirty records a local edit and (re)starts the debounce timer. Each
// edit within the window pushes the save out, so a burst of edits
// collapses into a single request carrying the final state.
func (s *Scheduler) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.dirty = true
	if s.kind != Saving {
		s.kind = Dirty
	}
	s.rearmLocked()
}

// Flush saves immediately, bypassing the debounce. Used by the embed-drop
// and blur paths. It shares the single-flight guard: when a save is
// already in flight the call is absorbed into the dirty flag and returns
// nil. A scheduler with no pending edits flushes to nothing - blurring a
// freshly loaded document must not re-save state the server already owns.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.kind == Saving {
		s.dirty = true
		s.mu.Unlock()
		return nil
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	s.beginSaveLocked()
	s.mu.Unlock()

	err := s.save(ctx)
	s.finishSave(err)
	return err
}

// Retry re-issues a save after a failure. A no-op in any other state.
func (s *Scheduler) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.kind != Failed {
		s.mu.Unlock()
		return nil
	}
	s.beginSaveLocked()
	s.mu.Unlock()

	err := s.save(ctx)
	s.finishSave(err)
	return err
}

// Close cancels the pending timer, waits for any in-flight save and
// permanently disables the scheduler. No background work continues
// against a discarded document.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.cancel()
	s.inflight.Wait()
}

// rearmLocked restarts the debounce timer. Caller holds s.mu.
func (s *Scheduler) rearmLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.interval, s.timerFired)
}

func (s *Scheduler) timerFired() {
	s.mu.Lock()
	if s.closed || !s.dirty || s.kind == Saving {
		// A save in flight absorbs the trigger; the dirty flag keeps
		// the pending edits alive for the next cycle.
		s.mu.Unlock()
		return
	}
	s.beginSaveLocked()
	// Registered under the lock so a concurrent Close cannot pass its
	// Wait between the state flip and the goroutine launch.
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		err := s.save(s.ctx)
		s.finishSave(err)
	}()
}

// beginSaveLocked flips into Saving and consumes the dirty flag; edits
// arriving while the save runs set it again. Caller holds s.mu.
func (s *Scheduler) beginSaveLocked() {
	s.kind = Saving
	s.dirty = false
	s.lastErr = nil
}

func (s *Scheduler) finishSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Local edits made during the failed save stay pending too.
		s.dirty = true
		s.kind = Failed
		s.lastErr = err
		if s.logger != nil {
			s.logger.Warn("document save failed", "error", err)
		}
		return
	}
	s.lastErr = nil
	if s.dirty {
		// Edits landed while saving: schedule the next cycle.
		s.kind = Dirty
		if !s.closed {
			s.rearmLocked()
		}
		return
	}
	s.kind = Clean
}
