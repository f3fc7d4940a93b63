package format

import (
	"regexp"
	"strings"
)

const (
	boldSpanOpen  = `<span style="color:black; font-weight:bold;">`
	boldSpanClose = `</span>`
	headingOpen   = `<h3 style="color:black;">`
	headingClose  = `</h3>`
	lineBreak     = `<br/>`
)

var (
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
	// lineBoundary matches every line terminator a text editor would break on.
	lineBoundary = regexp.MustCompile(`\r\n|[\n\r\v\f\x1c-\x1e\x{85}\x{2028}\x{2029}]`)
)

// Article is a response split into a title line and an HTML body.
type Article struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// HTML renders the title as a heading followed by the body.
func (a Article) HTML() string {
	return headingOpen + a.Title + headingClose + a.Body
}

// Sections treats the first line of text as the title and promotes every
// **bold** span of the remainder to a styled span. Only the first span gets
// a leading line break.
func Sections(text string) Article {
	lines := splitLines(text)
	title := strings.TrimSpace(lines[0])
	title = strings.TrimSpace(strings.ReplaceAll(title, "**", ""))

	return Article{
		Title: title,
		Body:  StyleBold(strings.Join(lines[1:], "\n")),
	}
}

// splitLines splits on any line terminator. A terminator at the very end
// does not start an extra empty line.
func splitLines(text string) []string {
	lines := lineBoundary.Split(text, -1)
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// StyleBold replaces each **text** with a bold span and inserts a line break
// before the first one.
func StyleBold(text string) string {
	first := true
	return boldPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := boldPattern.FindStringSubmatch(match)[1]
		span := boldSpanOpen + inner + boldSpanClose
		if first {
			first = false
			return lineBreak + span
		}
		return span
	})
}
