package textmetrics

import "testing"

// grid returns a provider with round numbers: 10px cells, 10px lines, no
// padding, so column c sits at x=10c and line l centers at y=10l+5.
func grid() *Monospace {
	return &Monospace{CellWidth: 10, LineHeight: 10}
}

func TestMeasureOffset(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		at    Point
		want  int
	}{
		{
			name: "empty text resolves to zero",
			text: "", width: 100, at: Point{X: 500, Y: 500}, want: 0,
		},
		{
			name: "exact column on first line",
			text: "hello", width: 100, at: Point{X: 30, Y: 5}, want: 3,
		},
		{
			name: "far right clamps to end of text",
			text: "hello", width: 100, at: Point{X: 900, Y: 900}, want: 5,
		},
		{
			name: "negative coordinates clamp to start",
			text: "hello", width: 100, at: Point{X: -50, Y: -50}, want: 0,
		},
		{
			name: "hard newline starts a new line",
			text: "hello\nworld", width: 100, at: Point{X: 1, Y: 15}, want: 6,
		},
		{
			name: "second line mid-word",
			text: "hello\nworld", width: 100, at: Point{X: 21, Y: 15}, want: 8,
		},
		{
			name: "soft wrap at the column limit",
			// three columns: "abc" on line 0, "def" wraps to line 1
			text: "abcdef", width: 30, at: Point{X: 11, Y: 15}, want: 4,
		},
		{
			name: "equidistant points pick the smaller offset",
			// x=5 is exactly between column 0 and column 1
			text: "ab", width: 100, at: Point{X: 5, Y: 5}, want: 0,
		},
		{
			name: "wide rune advances two cells",
			// '界' occupies columns 0-1, so offset 1 sits at x=20
			text: "界x", width: 100, at: Point{X: 19, Y: 5}, want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := grid().MeasureOffset(tt.text, tt.width, tt.at)
			if err != nil {
				t.Fatalf("MeasureOffset failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("MeasureOffset = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCaretTrackerCoalesces(t *testing.T) {
	var tr CaretTracker
	p := grid()

	// A burst of moves resolves once, with the latest sample winning.
	tr.Update(Point{X: 0, Y: 5})
	tr.Update(Point{X: 30, Y: 5})
	offset, ok, err := tr.Resolve(p, "hello", 100)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !ok || offset != 3 {
		t.Errorf("Resolve = (%d, %v), want (3, true)", offset, ok)
	}

	// No new sample since the last frame.
	if _, ok, _ := tr.Resolve(p, "hello", 100); ok {
		t.Error("Resolve reported a sample twice")
	}

	// Cancel discards a pending sample.
	tr.Update(Point{X: 10, Y: 5})
	tr.Cancel()
	if _, ok, _ := tr.Resolve(p, "hello", 100); ok {
		t.Error("Resolve reported a cancelled sample")
	}
}
