package textutil

import "testing"

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\t ", 0},
		{"plain prose", "three little words", 3},
		{"newlines separate words", "one\ntwo\nthree", 3},
		{"citation marker stripped", "glaciers retreat [1] yearly", 3},
		{"citation group stripped", "as shown [1, 2, 3] twice [4]", 3},
		{"marker glued to a word", "retreat[1] continues", 2},
		{"prose brackets still count", "[sic] stays", 2},
		{"marker alone", "[12]", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.text); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
