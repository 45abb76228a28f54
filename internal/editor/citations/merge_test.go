package citations

import (
	"testing"

	"inkwell/internal/domain/models"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		offset    int
		marker    int
		want      string
		wantCaret int
	}{
		{
			name:    "literal insert at start",
			content: "plain text", offset: 0, marker: 1,
			want: "[1]plain text", wantCaret: 3,
		},
		{
			name:    "literal insert mid-word",
			content: "plain text", offset: 5, marker: 2,
			want: "plain[2] text", wantCaret: 8,
		},
		{
			name:    "literal insert at end",
			content: "plain", offset: 5, marker: 12,
			want: "plain[12]", wantCaret: 9,
		},
		{
			name:    "append to single-marker group",
			content: "See [1] and [2].", offset: 5, marker: 3,
			want: "See [1, 3] and [2].", wantCaret: 10,
		},
		{
			name:    "append to multi-marker group",
			content: "facts [1, 2] here", offset: 8, marker: 5,
			want: "facts [1, 2, 5] here", wantCaret: 15,
		},
		{
			name:    "group with padding keeps trailing whitespace",
			content: "x[1 ]y", offset: 2, marker: 2,
			want: "x[1, 2 ]y", wantCaret: 8,
		},
		{
			name:    "prose brackets are not a group",
			content: "[see note]", offset: 5, marker: 1,
			want: "[see [1]note]", wantCaret: 8,
		},
		{
			name:    "between two groups inserts literally",
			content: "[1] [2]", offset: 3, marker: 3,
			want: "[1][3] [2]", wantCaret: 6,
		},
		{
			name:    "unclosed bracket inserts literally",
			content: "only [ open", offset: 8, marker: 1,
			want: "only [ o[1]pen", wantCaret: 11,
		},
		{
			name:    "offset clamped past end",
			content: "ab", offset: 99, marker: 1,
			want: "ab[1]", wantCaret: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, caret := Merge(tt.content, tt.offset, tt.marker)
			if got != tt.want {
				t.Errorf("Merge content = %q, want %q", got, tt.want)
			}
			if caret != tt.wantCaret {
				t.Errorf("Merge caret = %d, want %d", caret, tt.wantCaret)
			}
		})
	}
}

func TestNextMarker(t *testing.T) {
	cite := func(n int) models.Citation { return models.Citation{Marker: n} }

	tests := []struct {
		name     string
		existing []models.Citation
		want     int
	}{
		{"no citations", nil, 1},
		{"sequential", []models.Citation{cite(1), cite(2), cite(3)}, 4},
		{"gaps do not matter", []models.Citation{cite(1), cite(7)}, 8},
		{"unordered", []models.Citation{cite(4), cite(2)}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextMarker(tt.existing); got != tt.want {
				t.Errorf("NextMarker = %d, want %d", got, tt.want)
			}
		})
	}
}
