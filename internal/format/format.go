// Package format turns raw completion text into the content stored on an
// assistant turn.
package format

import "fmt"

// Mode selects how a response is post-processed.
type Mode string

const (
	ModeWrap     Mode = "wrap"
	ModeSections Mode = "sections"
)

// ParseMode validates a configured mode name.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeWrap, ModeSections:
		return Mode(raw), nil
	case "":
		return ModeWrap, nil
	default:
		return "", fmt.Errorf("unknown format mode %q", raw)
	}
}

// Result is the outcome of formatting one response. Title and Body are only
// set in sections mode.
type Result struct {
	Content string
	Title   string
	Body    string
}

// Formatter applies one mode to responses.
type Formatter struct {
	Mode      Mode
	WrapWidth int
}

// Format post-processes raw. Unknown modes fall back to wrapping.
func (f Formatter) Format(raw string) Result {
	if f.Mode == ModeSections {
		article := Sections(raw)
		return Result{
			Content: article.HTML(),
			Title:   article.Title,
			Body:    article.Body,
		}
	}
	return Result{Content: Wrap(raw, f.WrapWidth)}
}
