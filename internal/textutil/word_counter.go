package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// citationGroup matches bracketed citation markers like [1] or [1, 3] so
// they are not counted as prose words.
var citationGroup = regexp.MustCompile(`\[\s*\d+(?:,\s*\d+)*\s*\]`)

// CountWords counts the number of words in a section's text content.
// Citation markers are stripped first for a more accurate count.
func CountWords(text string) int {
	cleaned := citationGroup.ReplaceAllString(text, " ")

	words := strings.FieldsFunc(cleaned, func(r rune) bool {
		return unicode.IsSpace(r)
	})

	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 0 {
			count++
		}
	}
	return count
}
