package textmetrics

import "sync"

// CaretTracker coalesces pointer-move samples to at most one offset query
// per frame: raw move events overwrite the pending sample, and Resolve
// consumes whatever sample is newest when the frame tick comes around.
// This is the headless equivalent of requestAnimationFrame gating.
type CaretTracker struct {
	mu      sync.Mutex
	pending bool
	at      Point
}

// Update records the latest pointer position, replacing any sample that
// has not been resolved yet.
func (t *CaretTracker) Update(at Point) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.at = at
	t.pending = true
}

// Resolve consumes the pending sample and measures it against the given
// text. Reports ok=false when no new sample arrived since the last call,
// so an idle pointer costs nothing.
func (t *CaretTracker) Resolve(p Provider, text string, width float64) (offset int, ok bool, err error) {
	t.mu.Lock()
	if !t.pending {
		t.mu.Unlock()
		return 0, false, nil
	}
	at := t.at
	t.pending = false
	t.mu.Unlock()

	offset, err = p.MeasureOffset(text, width, at)
	if err != nil {
		return 0, false, err
	}
	return offset, true, nil
}

// Cancel discards any pending sample, used on drag-end and teardown.
func (t *CaretTracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = false
}
