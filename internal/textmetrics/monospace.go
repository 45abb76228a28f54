package textmetrics

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// Monospace is a headless Provider for fixed-pitch rendering. Glyph
// advances come from go-runewidth, so East Asian wide characters occupy
// two cells and zero-width combining marks occupy none, matching what a
// terminal-style surface renders.
type Monospace struct {
	CellWidth  float64 // advance width of one cell, px
	LineHeight float64 // px
	PaddingX   float64 // horizontal inset of the text region, px
	PaddingY   float64 // vertical inset of the text region, px
}

// NewMonospace returns a Monospace with typical editor metrics.
func NewMonospace() *Monospace {
	return &Monospace{
		CellWidth:  8,
		LineHeight: 20,
		PaddingX:   4,
		PaddingY:   4,
	}
}

// MeasureOffset lays the text out at the given width and scans every
// candidate offset 0..len, returning the one whose caret coordinate is
// nearest to at. O(length) per query; callers coalesce queries to one per
// pointer-move frame. An empty text always resolves to offset 0.
func (m *Monospace) MeasureOffset(text string, width float64, at Point) (int, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0, nil
	}

	columns := int((width - 2*m.PaddingX) / m.CellWidth)
	if columns < 1 {
		columns = 1
	}

	best := 0
	bestDist := math.Inf(1)

	line, col := 0, 0
	for i := 0; i <= len(runes); i++ {
		// Caret position for offset i is the pen position before the
		// rune at i is advanced over.
		x := m.PaddingX + float64(col)*m.CellWidth
		y := m.PaddingY + float64(line)*m.LineHeight + m.LineHeight/2
		dist := math.Hypot(at.X-x, at.Y-y)
		if dist < bestDist {
			bestDist = dist
			best = i
		}

		if i == len(runes) {
			break
		}
		if runes[i] == '\n' {
			line++
			col = 0
			continue
		}
		w := runewidth.RuneWidth(runes[i])
		if col+w > columns {
			line++
			col = 0
		}
		col += w
	}

	return best, nil
}
