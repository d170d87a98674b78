package application

import (
	"math"
	"regexp"
	"strings"
)

const (
	summaryLength   = 250
	wordsPerMinute  = 200
	minimumWordRate = 100
)

var (
	tagRegex    = regexp.MustCompile(`<[^>]+>`)
	spacesRegex = regexp.MustCompile(`\s+`)
)

// extractPlainText strips markup and collapses whitespace so summaries and
// read-time estimates work on the words alone.
func extractPlainText(html string) string {
	text := tagRegex.ReplaceAllString(html, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = spacesRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// summarize produces the stored teaser for list views.
func summarize(html string) string {
	text := extractPlainText(html)
	if len(text) > summaryLength {
		text = text[:summaryLength]
	}
	return text
}

// computeReadTimeMinutes estimates reading time at a fixed words-per-minute
// rate, never below one minute for non-empty content.
func computeReadTimeMinutes(html string) int {
	text := extractPlainText(html)
	if text == "" {
		return 0
	}

	words := len(strings.Fields(text))
	rate := wordsPerMinute
	if rate < minimumWordRate {
		rate = minimumWordRate
	}
	minutes := int(math.Ceil(float64(words) / float64(rate)))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
