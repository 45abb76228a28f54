// Package sections holds the ordered section list of an open document and
// its mutation operations. Every operation rebuilds the list value-wise;
// callers never observe partial mutation, and order indices are renumbered
// to the contiguous 0..n-1 permutation after every structural change.
package sections

import (
	"fmt"
	"strings"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/textutil"
)

// Store is the in-memory section list for one document.
type Store struct {
	documentID string
	sections   []models.Section
}

// New creates a store for the given document. A document always has at
// least one section: when the server returns zero, a single empty
// placeholder is synthesized. The placeholder carries no server id and is
// only persisted once the user actually edits it.
func New(documentID string, secs []models.Section) *Store {
	s := &Store{documentID: documentID}
	s.replace(secs)
	return s
}

// Sections returns a copy of the current ordered section list.
func (s *Store) Sections() []models.Section {
	out := make([]models.Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// Len returns the number of sections.
func (s *Store) Len() int { return len(s.sections) }

// Section returns a copy of the section at index.
func (s *Store) Section(index int) (models.Section, error) {
	if err := s.checkIndex(index); err != nil {
		return models.Section{}, err
	}
	return s.sections[index], nil
}

// ApplyRemote replaces the whole in-memory set with the canonical sections
// returned by the server. This is the only non-local mutation path; it is
// deliberately distinct from the edit operations so the persistence
// scheduler never observes a server-driven change as a new edit.
func (s *Store) ApplyRemote(secs []models.Section) {
	s.replace(secs)
}

// UpdateContent replaces the content of a text section and recomputes its
// word count. Updating an embedded section is a no-op.
func (s *Store) UpdateContent(index int, text string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if s.sections[index].IsEmbedded() {
		return nil
	}
	next := s.copyAll()
	next[index].Content = text
	next[index].WordCount = textutil.CountWords(text)
	s.sections = next
	return nil
}

// ShouldSplit reports whether pressing Enter at caret should split the
// section: the caret is immediately preceded or followed by two
// consecutive newlines.
func ShouldSplit(content string, caret int) bool {
	runes := []rune(content)
	caret = clamp(caret, 0, len(runes))
	before := caret >= 2 && runes[caret-1] == '\n' && runes[caret-2] == '\n'
	after := caret+1 < len(runes) && runes[caret] == '\n' && runes[caret+1] == '\n'
	return before || after
}

// SplitOnDoubleBreak divides a text section at the caret. The head
// (trailing newlines stripped) replaces the original; the tail (leading
// newlines stripped) becomes a new section immediately after. Empty text
// sections stranded strictly between two non-empty neighbors are dropped,
// which makes rapid repeated Enter presses idempotent; the first and last
// sections survive even when empty.
func (s *Store) SplitOnDoubleBreak(index, caretStart, caretEnd int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if s.sections[index].IsEmbedded() {
		return fmt.Errorf("%w: cannot split an embedded section", domain.ErrValidation)
	}

	runes := []rune(s.sections[index].Content)
	caretStart = clamp(caretStart, 0, len(runes))
	caretEnd = clamp(caretEnd, caretStart, len(runes))

	head := strings.TrimRight(string(runes[:caretStart]), "\n")
	tail := strings.TrimLeft(string(runes[caretEnd:]), "\n")

	next := s.copyAll()
	next[index].Content = head
	next[index].WordCount = textutil.CountWords(head)

	tailSection := models.Section{
		DocumentID: s.documentID,
		Content:    tail,
		WordCount:  textutil.CountWords(tail),
	}
	next = insertAt(next, index+1, tailSection)

	s.sections = dropStrandedEmpties(next)
	s.renumber()
	return nil
}

// InsertAfter inserts a new text section immediately after index.
func (s *Store) InsertAfter(index int, initialContent string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	sec := models.Section{
		DocumentID: s.documentID,
		Content:    initialContent,
		WordCount:  textutil.CountWords(initialContent),
	}
	s.sections = insertAt(s.copyAll(), index+1, sec)
	s.renumber()
	return nil
}

// InsertEmbedAt inserts a new embedded section at position, which may be
// any gap from 0 (before the first section) to Len() (after the last).
// Embedded sections carry no text content, only the content reference.
func (s *Store) InsertEmbedAt(position int, contentID int64) error {
	if position < 0 || position > len(s.sections) {
		return fmt.Errorf("%w: insert position %d out of range (0..%d)", domain.ErrValidation, position, len(s.sections))
	}
	id := contentID
	sec := models.Section{
		DocumentID:        s.documentID,
		EmbeddedContentID: &id,
	}
	s.sections = insertAt(s.copyAll(), position, sec)
	s.renumber()
	return nil
}

// Delete removes the section at index. The last remaining section can
// never be deleted. Non-empty text sections and all embedded sections
// require confirmation; empty text sections delete silently.
func (s *Store) Delete(index int, confirmed bool) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if len(s.sections) == 1 {
		return domain.ErrLastSection
	}
	sec := s.sections[index]
	if !confirmed && (sec.IsEmbedded() || sec.Content != "") {
		return domain.ErrConfirmRequired
	}
	next := s.copyAll()
	s.sections = append(next[:index], next[index+1:]...)
	s.renumber()
	return nil
}

// Duplicate clones the section at index (content or embedded reference)
// and inserts the clone immediately after it.
func (s *Store) Duplicate(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	src := s.sections[index]
	clone := models.Section{
		DocumentID: s.documentID,
		Content:    src.Content,
		WordCount:  src.WordCount,
	}
	if src.EmbeddedContentID != nil {
		id := *src.EmbeddedContentID
		clone.EmbeddedContentID = &id
	}
	if src.Title != nil {
		t := *src.Title
		clone.Title = &t
	}
	s.sections = insertAt(s.copyAll(), index+1, clone)
	s.renumber()
	return nil
}

// Reorder moves the section at from to position to: remove then reinsert,
// renumbering the whole list.
func (s *Store) Reorder(from, to int) error {
	if err := s.checkIndex(from); err != nil {
		return err
	}
	if to < 0 || to >= len(s.sections) {
		return fmt.Errorf("%w: target index %d out of range", domain.ErrValidation, to)
	}
	if from == to {
		return nil
	}
	next := s.copyAll()
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	next = insertAt(next, to, moved)
	s.sections = next
	s.renumber()
	return nil
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.sections) {
		return fmt.Errorf("%w: section index %d out of range (0..%d)", domain.ErrValidation, index, len(s.sections)-1)
	}
	return nil
}

func (s *Store) copyAll() []models.Section {
	out := make([]models.Section, len(s.sections))
	copy(out, s.sections)
	return out
}

func (s *Store) replace(secs []models.Section) {
	if len(secs) == 0 {
		s.sections = []models.Section{{DocumentID: s.documentID}}
	} else {
		s.sections = make([]models.Section, len(secs))
		copy(s.sections, secs)
	}
	s.renumber()
}

func (s *Store) renumber() {
	for i := range s.sections {
		s.sections[i].OrderIndex = i
	}
}

// dropStrandedEmpties removes empty text sections strictly between two
// non-empty neighbors. Embedded sections count as non-empty and are never
// dropped themselves; the first and last sections always survive.
func dropStrandedEmpties(secs []models.Section) []models.Section {
	out := make([]models.Section, 0, len(secs))
	for i, sec := range secs {
		if i > 0 && i < len(secs)-1 &&
			!sec.IsEmbedded() && sec.Content == "" &&
			nonEmpty(secs[i-1]) && nonEmpty(secs[i+1]) {
			continue
		}
		out = append(out, sec)
	}
	return out
}

func nonEmpty(sec models.Section) bool {
	return sec.IsEmbedded() || sec.Content != ""
}

func insertAt(secs []models.Section, index int, sec models.Section) []models.Section {
	secs = append(secs, models.Section{})
	copy(secs[index+1:], secs[index:])
	secs[index] = sec
	return secs
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
