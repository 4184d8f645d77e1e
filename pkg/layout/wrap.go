// wrap.go - Greedy word wrapping against a measured maximum width.
package layout

import "strings"

// MeasureFunc returns the rendered width of s in pixels at the current font.
type MeasureFunc func(s string) float64

// Wrap breaks text into display lines no wider than maxWidth.
//
// Explicit line breaks split the text into blocks first. A block that is
// empty after trimming becomes one blank line, so paragraph spacing survives.
// Words are accumulated greedily; a word that is wider than maxWidth on its
// own still gets a line to itself (no hyphenation).
func Wrap(measure MeasureFunc, text string, maxWidth float64) []string {
	var lines []string

	for _, block := range splitLines(text) {
		words := strings.Fields(block)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if line != "" && measure(candidate) > maxWidth {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}

	return lines
}
