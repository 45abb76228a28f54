package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Document is the server-owned document header. The client keeps a cached
// copy and mutates the title only through explicit title-save calls.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Section is one ordered unit of a document: either editable text or a
// reference to embedded external content, never both.
type Section struct {
	ID                *string   `json:"id,omitempty"` // nil until first persisted
	DocumentID        string    `json:"document_id"`
	Content           string    `json:"content"`
	OrderIndex        int       `json:"order_index"`
	Title             *string   `json:"title"`
	WordCount         int       `json:"word_count"`
	EmbeddedContentID *int64    `json:"embedded_content_id"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsEmbedded reports whether the section references embedded content
// instead of carrying editable text.
func (s *Section) IsEmbedded() bool {
	return s.EmbeddedContentID != nil
}

// Validate enforces the text-XOR-embedded invariant on sections decoded
// from the wire. An embedded section must carry no text content.
func (s *Section) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.DocumentID, validation.Required),
		validation.Field(&s.OrderIndex, validation.Min(0)),
		validation.Field(&s.Content,
			validation.When(s.EmbeddedContentID != nil, validation.Empty.Error("embedded section cannot carry text content")),
		),
	)
}

// Citation records a numbered marker inserted into section text. The
// position is the character offset at insertion time; it is recorded for
// reference and deliberately not re-validated after later edits.
type Citation struct {
	ID           *string `json:"id,omitempty"`
	DocumentID   string  `json:"document_id"`
	ContentID    int64   `json:"content_id"`
	Marker       int     `json:"marker"`
	Position     int     `json:"position"`
	SectionIndex int     `json:"section_index"`
}

// Validate checks a citation before it is sent to the document API.
func (c *Citation) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DocumentID, validation.Required),
		validation.Field(&c.ContentID, validation.Required),
		validation.Field(&c.Marker, validation.Required, validation.Min(1)),
		validation.Field(&c.Position, validation.Min(0)),
		validation.Field(&c.SectionIndex, validation.Min(0)),
	)
}
