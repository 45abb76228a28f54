package dragdrop

import (
	"errors"
	"testing"

	"inkwell/internal/domain"
)

func TestReorderDrag(t *testing.T) {
	tests := []struct {
		name     string
		source   int
		hovers   []struct {
			index    int
			fraction float64
		}
		wantFrom  int
		wantTo    int
		wantMoved bool
	}{
		{
			name:   "upper half targets the hovered index",
			source: 2,
			hovers: []struct {
				index    int
				fraction float64
			}{{0, 0.2}},
			wantFrom: 2, wantTo: 0, wantMoved: true,
		},
		{
			name:   "lower half targets index plus one",
			source: 0,
			hovers: []struct {
				index    int
				fraction float64
			}{{2, 0.8}},
			wantFrom: 0, wantTo: 2, wantMoved: true,
		},
		{
			name:   "drop index past source is corrected for removal",
			source: 0,
			hovers: []struct {
				index    int
				fraction float64
			}{{1, 0.2}},
			// insertion index 1 collapses to position 0 once the
			// source is removed, so nothing moves
			wantMoved: false,
		},
		{
			name:   "last hover wins",
			source: 3,
			hovers: []struct {
				index    int
				fraction float64
			}{{0, 0.2}, {1, 0.2}},
			wantFrom: 3, wantTo: 1, wantMoved: true,
		},
		{
			name:      "drop without hover is a no-op",
			source:    1,
			wantMoved: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			if err := c.BeginReorder(tt.source); err != nil {
				t.Fatalf("BeginReorder failed: %v", err)
			}
			for _, h := range tt.hovers {
				c.HoverSection(h.index, h.fraction)
			}
			from, to, moved := c.DropReorder()
			if moved != tt.wantMoved {
				t.Fatalf("moved = %v, want %v", moved, tt.wantMoved)
			}
			if moved && (from != tt.wantFrom || to != tt.wantTo) {
				t.Errorf("move = (%d, %d), want (%d, %d)", from, to, tt.wantFrom, tt.wantTo)
			}
			if c.State().Kind != KindIdle {
				t.Errorf("controller not idle after drop")
			}
		})
	}
}

func TestEmbedDrag(t *testing.T) {
	c := NewController()
	p := Payload{ContentID: 42, Title: "Notes"}

	if err := c.BeginEmbed(p); err != nil {
		t.Fatalf("BeginEmbed failed: %v", err)
	}
	c.HoverGap(1)
	c.HoverGap(3)
	gap, got, ok := c.DropEmbed()
	if !ok {
		t.Fatal("expected a completed embed drop")
	}
	if gap != 3 || got.ContentID != 42 {
		t.Errorf("drop = (%d, %+v)", gap, got)
	}
	if c.State().Kind != KindIdle {
		t.Errorf("controller not idle after drop")
	}

	// Dropping again without a new drag reports nothing.
	if _, _, ok := c.DropEmbed(); ok {
		t.Error("stale drop reported ok")
	}
}

func TestCaretDrag(t *testing.T) {
	c := NewController()
	if err := c.BeginCaretDrag(Payload{ContentID: 7}); err != nil {
		t.Fatalf("BeginCaretDrag failed: %v", err)
	}
	c.HoverText(0)
	c.HoverText(2)
	idx, p, ok := c.DropCaret()
	if !ok || idx != 2 || p.ContentID != 7 {
		t.Errorf("drop = (%d, %+v, %v)", idx, p, ok)
	}
}

func TestDragsAreMutuallyExclusive(t *testing.T) {
	c := NewController()
	if err := c.BeginReorder(0); err != nil {
		t.Fatalf("BeginReorder failed: %v", err)
	}

	if err := c.BeginEmbed(Payload{ContentID: 1}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("BeginEmbed during reorder: got %v, want ErrValidation", err)
	}
	if err := c.BeginCaretDrag(Payload{ContentID: 1}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("BeginCaretDrag during reorder: got %v, want ErrValidation", err)
	}

	// Hovers for the wrong mode are ignored rather than corrupting state.
	c.HoverGap(2)
	c.HoverText(1)
	if st := c.State(); st.GapIndex != -1 || st.TargetIndex != -1 {
		t.Errorf("cross-mode hovers mutated state: %+v", st)
	}

	c.Reset()
	if err := c.BeginEmbed(Payload{ContentID: 1}); err != nil {
		t.Errorf("BeginEmbed after reset failed: %v", err)
	}
}

func TestResetClearsActiveDrag(t *testing.T) {
	c := NewController()
	if err := c.BeginEmbed(Payload{ContentID: 9}); err != nil {
		t.Fatalf("BeginEmbed failed: %v", err)
	}
	c.HoverGap(1)
	c.Reset()

	if st := c.State(); st.Kind != KindIdle || st.GapIndex != -1 {
		t.Errorf("reset left state %+v", st)
	}
	if _, _, ok := c.DropEmbed(); ok {
		t.Error("drop after reset reported ok")
	}
}
