package sections

import (
	"errors"
	"testing"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

func textSection(content string) models.Section {
	return models.Section{DocumentID: "doc-1", Content: content}
}

func embedSection(contentID int64) models.Section {
	return models.Section{DocumentID: "doc-1", EmbeddedContentID: &contentID}
}

func contents(t *testing.T, s *Store) []string {
	t.Helper()
	var out []string
	for _, sec := range s.Sections() {
		out = append(out, sec.Content)
	}
	return out
}

// assertContiguous checks the order_index invariant: a contiguous 0..n-1
// permutation matching slice position.
func assertContiguous(t *testing.T, s *Store) {
	t.Helper()
	for i, sec := range s.Sections() {
		if sec.OrderIndex != i {
			t.Fatalf("order_index at position %d is %d, want %d", i, sec.OrderIndex, i)
		}
	}
}

func TestNewSynthesizesPlaceholder(t *testing.T) {
	s := New("doc-1", nil)
	if s.Len() != 1 {
		t.Fatalf("expected one placeholder section, got %d", s.Len())
	}
	sec, _ := s.Section(0)
	if sec.Content != "" || sec.IsEmbedded() || sec.ID != nil {
		t.Errorf("placeholder should be an empty unsaved text section, got %+v", sec)
	}
	assertContiguous(t, s)
}

func TestUpdateContent(t *testing.T) {
	s := New("doc-1", []models.Section{textSection("old"), embedSection(7)})

	if err := s.UpdateContent(0, "three little words"); err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}
	sec, _ := s.Section(0)
	if sec.Content != "three little words" {
		t.Errorf("content not updated: %q", sec.Content)
	}
	if sec.WordCount != 3 {
		t.Errorf("word count = %d, want 3", sec.WordCount)
	}

	// Updating an embedded section is a no-op, not an error.
	if err := s.UpdateContent(1, "should be ignored"); err != nil {
		t.Fatalf("embedded update returned error: %v", err)
	}
	sec, _ = s.Section(1)
	if sec.Content != "" {
		t.Errorf("embedded section content changed: %q", sec.Content)
	}

	if err := s.UpdateContent(5, "x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("out-of-range update: got %v, want ErrValidation", err)
	}
}

func TestShouldSplit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		caret   int
		want    bool
	}{
		{"double break before caret", "A\n\n", 3, true},
		{"double break after caret", "A\n\nB", 1, true},
		{"single break only", "A\nB", 2, false},
		{"no breaks", "AB", 1, false},
		{"empty content", "", 0, false},
		{"caret clamped past end", "A\n\n", 99, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSplit(tt.content, tt.caret); got != tt.want {
				t.Errorf("ShouldSplit(%q, %d) = %v, want %v", tt.content, tt.caret, got, tt.want)
			}
		})
	}
}

func TestSplitOnDoubleBreak(t *testing.T) {
	s := New("doc-1", []models.Section{textSection("A\n\n\nB")})

	// Midpoint of the newline run: head keeps "A", tail keeps "B".
	if err := s.SplitOnDoubleBreak(0, 2, 2); err != nil {
		t.Fatalf("split failed: %v", err)
	}
	got := contents(t, s)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("split produced %q, want [A B]", got)
	}
	assertContiguous(t, s)
}

func TestSplitDropsStrandedEmptySection(t *testing.T) {
	// Splitting at the very end of "A\n\n\n" strands an empty tail
	// between "A" and "C"; it must be silently dropped.
	s := New("doc-1", []models.Section{textSection("A\n\n\n"), textSection("C")})
	if err := s.SplitOnDoubleBreak(0, 5, 5); err != nil {
		t.Fatalf("split failed: %v", err)
	}
	got := contents(t, s)
	if len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Fatalf("stranded empty not dropped: %q", got)
	}
	assertContiguous(t, s)
}

func TestSplitKeepsEmptyEdges(t *testing.T) {
	// An empty head stays when it is the first section.
	s := New("doc-1", []models.Section{textSection("\n\nB")})
	if err := s.SplitOnDoubleBreak(0, 0, 0); err != nil {
		t.Fatalf("split failed: %v", err)
	}
	got := contents(t, s)
	if len(got) != 2 || got[0] != "" || got[1] != "B" {
		t.Fatalf("split produced %q, want [\"\" B]", got)
	}
}

func TestSplitEmbeddedRefused(t *testing.T) {
	s := New("doc-1", []models.Section{embedSection(3)})
	if err := s.SplitOnDoubleBreak(0, 0, 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("splitting embedded section: got %v, want ErrValidation", err)
	}
}

func TestInsertAfter(t *testing.T) {
	s := New("doc-1", []models.Section{textSection("A"), textSection("B")})
	if err := s.InsertAfter(0, "new"); err != nil {
		t.Fatalf("InsertAfter failed: %v", err)
	}
	got := contents(t, s)
	if len(got) != 3 || got[1] != "new" {
		t.Fatalf("insert produced %q", got)
	}
	assertContiguous(t, s)
}

func TestInsertEmbedAt(t *testing.T) {
	s := New("doc-1", []models.Section{textSection("A"), textSection("B")})

	// Gap 0 precedes the first section.
	if err := s.InsertEmbedAt(0, 42); err != nil {
		t.Fatalf("InsertEmbedAt failed: %v", err)
	}
	sec, _ := s.Section(0)
	if !sec.IsEmbedded() || *sec.EmbeddedContentID != 42 {
		t.Fatalf("expected embedded section at front, got %+v", sec)
	}
	if sec.Content != "" {
		t.Errorf("embedded section must have empty content")
	}

	// Gap Len() follows the last section.
	if err := s.InsertEmbedAt(s.Len(), 43); err != nil {
		t.Fatalf("InsertEmbedAt at tail failed: %v", err)
	}
	last, _ := s.Section(s.Len() - 1)
	if !last.IsEmbedded() || *last.EmbeddedContentID != 43 {
		t.Fatalf("expected embedded section at tail, got %+v", last)
	}
	assertContiguous(t, s)

	if err := s.InsertEmbedAt(99, 44); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("out-of-range insert: got %v, want ErrValidation", err)
	}
}

func TestDelete(t *testing.T) {
	t.Run("last section refused", func(t *testing.T) {
		s := New("doc-1", []models.Section{textSection("only")})
		if err := s.Delete(0, true); !errors.Is(err, domain.ErrLastSection) {
			t.Errorf("got %v, want ErrLastSection", err)
		}
		if s.Len() != 1 {
			t.Errorf("section count changed to %d", s.Len())
		}
	})

	t.Run("non-empty needs confirmation", func(t *testing.T) {
		s := New("doc-1", []models.Section{textSection("keep me"), textSection("B")})
		if err := s.Delete(0, false); !errors.Is(err, domain.ErrConfirmRequired) {
			t.Errorf("got %v, want ErrConfirmRequired", err)
		}
		if err := s.Delete(0, true); err != nil {
			t.Errorf("confirmed delete failed: %v", err)
		}
		if s.Len() != 1 {
			t.Errorf("expected 1 section, got %d", s.Len())
		}
	})

	t.Run("embedded needs confirmation", func(t *testing.T) {
		s := New("doc-1", []models.Section{embedSection(1), textSection("B")})
		if err := s.Delete(0, false); !errors.Is(err, domain.ErrConfirmRequired) {
			t.Errorf("got %v, want ErrConfirmRequired", err)
		}
	})

	t.Run("empty deletes silently", func(t *testing.T) {
		s := New("doc-1", []models.Section{textSection(""), textSection("B")})
		if err := s.Delete(0, false); err != nil {
			t.Errorf("silent delete failed: %v", err)
		}
		assertContiguous(t, s)
	})
}

func TestDuplicate(t *testing.T) {
	s := New("doc-1", []models.Section{textSection("A"), embedSection(9)})

	if err := s.Duplicate(1); err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	clone, _ := s.Section(2)
	if !clone.IsEmbedded() || *clone.EmbeddedContentID != 9 {
		t.Fatalf("embedded reference not cloned: %+v", clone)
	}
	if clone.ID != nil {
		t.Errorf("clone must not inherit the server id")
	}
	assertContiguous(t, s)
}

func TestReorderRotation(t *testing.T) {
	s := New("doc-1", []models.Section{textSection("a"), textSection("b"), textSection("c")})

	if err := s.Reorder(0, 2); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	got := contents(t, s)
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation produced %q, want %q", got, want)
		}
	}
	assertContiguous(t, s)
}

func TestApplyRemoteReplacesWholesale(t *testing.T) {
	s := New("doc-1", []models.Section{textSection("local")})
	id := "srv-1"
	s.ApplyRemote([]models.Section{
		{ID: &id, DocumentID: "doc-1", Content: "canonical", OrderIndex: 5},
	})
	sec, _ := s.Section(0)
	if sec.Content != "canonical" || sec.OrderIndex != 0 {
		t.Fatalf("remote apply produced %+v", sec)
	}

	// Zero canonical sections synthesize the placeholder again.
	s.ApplyRemote(nil)
	if s.Len() != 1 {
		t.Fatalf("expected placeholder after empty remote apply, got %d sections", s.Len())
	}
}

func TestSectionsReturnsCopy(t *testing.T) {
	s := New("doc-1", []models.Section{textSection("A")})
	snapshot := s.Sections()
	snapshot[0].Content = "mutated"
	sec, _ := s.Section(0)
	if sec.Content != "A" {
		t.Errorf("snapshot aliased the store")
	}
}
