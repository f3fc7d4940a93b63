package format

import "strings"

// DefaultWrapWidth is the number of words per line used when no width is configured.
const DefaultWrapWidth = 20

// Wrap regroups the words of text into lines of at most width words.
// No word is dropped; whitespace runs collapse to a single space.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var builder strings.Builder
	for i := 0; i < len(words); i += width {
		end := i + width
		if end > len(words) {
			end = len(words)
		}
		builder.WriteString(strings.Join(words[i:end], " "))
		builder.WriteString("\n")
	}

	return strings.TrimSpace(builder.String())
}
