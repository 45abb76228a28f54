// Package dragdrop tracks in-progress drags over the editor as one
// explicit tagged-union state machine: section reordering, embed drops
// into the gaps between sections, and caret-targeted citation drops are
// mutually exclusive, so an active drag of one kind suppresses the
// others' drop targets.
package dragdrop

import (
	"fmt"
	"sync"

	"inkwell/internal/domain"
)

// Kind is the active drag mode.
type Kind int

const (
	KindIdle Kind = iota
	KindReordering
	KindEmbedDragging
	KindCaretDragging
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindReordering:
		return "reordering"
	case KindEmbedDragging:
		return "embed-dragging"
	case KindCaretDragging:
		return "caret-dragging"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller. Fields are meaningful only for
// the matching Kind.
type State struct {
	Kind        Kind
	SourceIndex int     // Reordering: section being dragged
	DropIndex   int     // Reordering: provisional insertion index, -1 before first hover
	GapIndex    int     // EmbedDragging: hovered gap, -1 before first hover
	TargetIndex int     // CaretDragging: hovered text section, -1 before first hover
	Payload     Payload // EmbedDragging / CaretDragging
}

// Controller is the single drag state machine for one open editor.
type Controller struct {
	mu    sync.Mutex
	state State
}

// NewController returns a controller in the idle state.
func NewController() *Controller {
	c := &Controller{}
	c.state = idleState()
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset unconditionally returns to idle. Called on drop, on drag-end and
// on editor teardown, so a cancelled native drag can never leave a stale
// highlighted drop target behind.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = idleState()
}

// BeginReorder starts a section-reorder drag. Refused while any other
// drag is in progress.
func (c *Controller) BeginReorder(sourceIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Kind != KindIdle {
		return fmt.Errorf("%w: drag already in progress (%s)", domain.ErrValidation, c.state.Kind)
	}
	c.state = State{Kind: KindReordering, SourceIndex: sourceIndex, DropIndex: -1, GapIndex: -1, TargetIndex: -1}
	return nil
}

// HoverSection updates the provisional drop index during a reorder drag.
// The insert-line rule: pointer in the upper half of a section's bounding
// box targets that section's index, lower half targets index+1.
func (c *Controller) HoverSection(index int, pointerFraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Kind != KindReordering {
		return
	}
	if pointerFraction < 0.5 {
		c.state.DropIndex = index
	} else {
		c.state.DropIndex = index + 1
	}
}

// DropReorder finishes a reorder drag and returns the move to apply. The
// final index is corrected for the removal of the source element; moved
// reports false when no hover happened or the corrected index equals the
// source. The controller is reset to idle in every case.
func (c *Controller) DropReorder() (from, to int, moved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	c.state = idleState()
	if st.Kind != KindReordering || st.DropIndex < 0 {
		return 0, 0, false
	}
	from = st.SourceIndex
	to = st.DropIndex
	if to > from {
		to--
	}
	if to == from {
		return 0, 0, false
	}
	return from, to, true
}

// BeginEmbed starts an external-content drag over the gap drop-zones.
// Suppressed while a section reorder is in progress to keep drop targets
// unambiguous.
func (c *Controller) BeginEmbed(p Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Kind != KindIdle {
		return fmt.Errorf("%w: drag already in progress (%s)", domain.ErrValidation, c.state.Kind)
	}
	c.state = State{Kind: KindEmbedDragging, DropIndex: -1, GapIndex: -1, TargetIndex: -1, Payload: p}
	return nil
}

// HoverGap updates the hovered gap index during an embed drag. Gap i sits
// between section i-1 and section i; gap 0 precedes the first section.
func (c *Controller) HoverGap(gapIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Kind != KindEmbedDragging {
		return
	}
	c.state.GapIndex = gapIndex
}

// DropEmbed finishes an embed drag, returning the target gap and payload.
func (c *Controller) DropEmbed() (gapIndex int, p Payload, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	c.state = idleState()
	if st.Kind != KindEmbedDragging || st.GapIndex < 0 {
		return 0, Payload{}, false
	}
	return st.GapIndex, st.Payload, true
}

// BeginCaretDrag starts an external-content drag aimed at a caret
// position inside a text section (the citation drop path).
func (c *Controller) BeginCaretDrag(p Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Kind != KindIdle {
		return fmt.Errorf("%w: drag already in progress (%s)", domain.ErrValidation, c.state.Kind)
	}
	c.state = State{Kind: KindCaretDragging, DropIndex: -1, GapIndex: -1, TargetIndex: -1, Payload: p}
	return nil
}

// HoverText records which text section the pointer is currently over
// during a caret drag. Pointer-to-offset resolution is the caller's job
// (it owns the text metrics provider and the frame coalescing).
func (c *Controller) HoverText(sectionIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Kind != KindCaretDragging {
		return
	}
	c.state.TargetIndex = sectionIndex
}

// DropCaret finishes a caret drag, returning the hovered section and
// payload. The caller resolves the final character offset.
func (c *Controller) DropCaret() (sectionIndex int, p Payload, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	c.state = idleState()
	if st.Kind != KindCaretDragging || st.TargetIndex < 0 {
		return 0, Payload{}, false
	}
	return st.TargetIndex, st.Payload, true
}

func idleState() State {
	return State{Kind: KindIdle, DropIndex: -1, GapIndex: -1, TargetIndex: -1}
}
