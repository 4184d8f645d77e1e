// Package layout fits plain text into a fixed canvas: it classifies the text,
// wraps it into display lines, and shrinks the font once when the wrapped
// block overflows the vertical budget.
package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind is the coarse size category used to pick a base font size.
type Kind string

const (
	KindQuote   Kind = "quote"
	KindPassage Kind = "passage"
)

const (
	// QuoteMaxChars is the longest text (in characters) still treated as a quote.
	QuoteMaxChars = 200
	// QuoteMaxLines is the most lines a text may have and still count as a quote
	// regardless of its length.
	QuoteMaxLines = 4
)

// lineBreak matches "\n" and "\r\n" as a single separator.
var lineBreak = regexp.MustCompile(`\r?\n`)

// Classify returns KindQuote when the trimmed text is at most QuoteMaxChars
// characters long or spans at most QuoteMaxLines lines, and KindPassage otherwise.
func Classify(text string) Kind {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return KindQuote
	}

	lines := len(splitLines(normalized))
	if utf8.RuneCountInString(normalized) <= QuoteMaxChars || lines <= QuoteMaxLines {
		return KindQuote
	}
	return KindPassage
}

func splitLines(text string) []string {
	return lineBreak.Split(text, -1)
}
