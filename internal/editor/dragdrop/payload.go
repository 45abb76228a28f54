package dragdrop

import (
	"fmt"
	"strconv"

	"inkwell/internal/domain"
)

// Data-transfer keys for the drag payload exchanged between UI regions.
// This is the only wire format the drag layer owns.
const (
	DataKeyContentID = "application/x-inkwell-content-id"
	DataKeyTitle     = "application/x-inkwell-title"
	DataKeyPreview   = "application/x-inkwell-preview"
)

// Payload identifies the external content being dragged into the editor.
type Payload struct {
	ContentID int64
	Title     string
	Preview   string
}

// Entries serializes the payload into typed data-transfer entries.
func (p Payload) Entries() map[string]string {
	return map[string]string{
		DataKeyContentID: strconv.FormatInt(p.ContentID, 10),
		DataKeyTitle:     p.Title,
		DataKeyPreview:   p.Preview,
	}
}

// ParsePayload decodes data-transfer entries back into a Payload. The
// content id entry is mandatory; title and preview are display-only.
func ParsePayload(entries map[string]string) (Payload, error) {
	raw, ok := entries[DataKeyContentID]
	if !ok || raw == "" {
		return Payload{}, fmt.Errorf("%w: drag payload missing content id", domain.ErrValidation)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: drag payload content id %q is not numeric", domain.ErrValidation, raw)
	}
	return Payload{
		ContentID: id,
		Title:     entries[DataKeyTitle],
		Preview:   entries[DataKeyPreview],
	}, nil
}
