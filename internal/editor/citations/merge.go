// Package citations computes citation-marker insertion into section text.
package citations

import (
	"fmt"
	"regexp"
	"strings"

	"inkwell/internal/domain/models"
)

// markerGroup matches the inside of a citation bracket group: one or more
// comma-separated marker numbers, optionally padded with whitespace.
var markerGroup = regexp.MustCompile(`^\s*\d+(,\s*\d+)*\s*$`)

// Merge inserts marker number into content at the given rune offset and
// returns the new content plus the caret position after the insertion.
//
// When the offset falls inside an existing citation group ("[1]" or
// "[1, 2]"), the new number is appended to that group with a comma
// separator instead of nesting a second bracket; otherwise "[N]" is
// inserted literally at the offset.
func Merge(content string, offset, marker int) (string, int) {
	runes := []rune(content)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}

	open, end, inside := enclosingBrackets(runes, offset)
	if inside {
		inner := string(runes[open+1 : end])
		if markerGroup.MatchString(inner) {
			trimmed := strings.TrimRight(inner, " \t")
			trailing := inner[len(trimmed):]
			newInner := fmt.Sprintf("%s, %d%s", trimmed, marker, trailing)
			merged := string(runes[:open+1]) + newInner + string(runes[end:])
			// Caret lands just past the group's closing bracket.
			caret := open + 1 + len([]rune(newInner)) + 1
			return merged, caret
		}
	}

	literal := fmt.Sprintf("[%d]", marker)
	merged := string(runes[:offset]) + literal + string(runes[offset:])
	return merged, offset + len([]rune(literal))
}

// enclosingBrackets finds the bracket pair around offset: the nearest '['
// scanning backward and the nearest ']' scanning forward, with no
// intervening closing or opening bracket respectively. Reports ok=false
// when the offset is not inside a pair.
func enclosingBrackets(runes []rune, offset int) (open, end int, ok bool) {
	open = -1
	for i := offset - 1; i >= 0; i-- {
		if runes[i] == ']' {
			return 0, 0, false
		}
		if runes[i] == '[' {
			open = i
			break
		}
	}
	if open == -1 {
		return 0, 0, false
	}
	for i := offset; i < len(runes); i++ {
		if runes[i] == '[' {
			return 0, 0, false
		}
		if runes[i] == ']' {
			return open, i, true
		}
	}
	return 0, 0, false
}

// NextMarker allocates the next marker number for a document: markers are
// 1-based and strictly increasing, so the next value is max existing + 1.
func NextMarker(existing []models.Citation) int {
	max := 0
	for _, c := range existing {
		if c.Marker > max {
			max = c.Marker
		}
	}
	return max + 1
}
