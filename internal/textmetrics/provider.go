// Package textmetrics maps pointer coordinates inside a rendered text
// region to character offsets. Measurement sits behind the Provider
// interface so each rendering surface supplies its own shaping and the
// editing logic stays headless.
package textmetrics

// Point is a pixel coordinate relative to the text region's origin.
type Point struct {
	X float64
	Y float64
}

// Provider resolves the rune offset whose rendered caret position is
// nearest (Euclidean distance) to the target point, with ties broken by
// the smallest offset. Implementations must mirror the live region's
// font, padding and line wrapping exactly.
type Provider interface {
	MeasureOffset(text string, width float64, at Point) (int, error)
}
