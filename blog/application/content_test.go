package application

import (
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"strips tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"collapses whitespace", "a\n\n  b\t c", "a b c"},
		{"nbsp entities", "a&nbsp;b", "a b"},
		{"plain text untouched", "just words", "just words"},
		{"empty", "", ""},
		{"only markup", "<div><br/></div>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPlainText(tt.html); got != tt.want {
				t.Errorf("extractPlainText(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := summarize("<p>" + long + "</p>")
	if len(got) != summaryLength {
		t.Errorf("len(summary) = %d, want %d", len(got), summaryLength)
	}

	short := summarize("<p>short</p>")
	if short != "short" {
		t.Errorf("summarize(short) = %q, want short", short)
	}
}

func TestComputeReadTimeMinutes(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"empty content", 0, 0},
		{"few words round up to a minute", 5, 1},
		{"exactly one rate unit", wordsPerMinute, 1},
		{"just over one rate unit", wordsPerMinute + 1, 2},
		{"several minutes", wordsPerMinute * 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := "<p>" + strings.Repeat("word ", tt.words) + "</p>"
			if got := computeReadTimeMinutes(html); got != tt.want {
				t.Errorf("computeReadTimeMinutes(%d words) = %d, want %d", tt.words, got, tt.want)
			}
		})
	}
}
