package variant

import "github.com/zhouzirui/chatbox/backend/internal/format"

// Variant describes one flavour of the chat front-end and how its replies
// are post-processed.
type Variant struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Format      format.Mode `json:"format"`
	WrapWidth   int         `json:"wrapWidth,omitempty"`
	Sentiment   bool        `json:"sentiment"`
	Artifact    bool        `json:"artifact"`
}

// Formatter returns the response formatter configured for v.
func (v Variant) Formatter() format.Formatter {
	return format.Formatter{Mode: v.Format, WrapWidth: v.WrapWidth}
}

// Seed provides the three built-in variants.
func Seed() []Variant {
	return []Variant{
		{
			ID:          "chatbox",
			Name:        "ChatBot",
			Title:       "ChatBot with Groq API",
			Description: "Plain chat; replies are wrapped to twenty words per line.",
			Format:      format.ModeWrap,
			WrapWidth:   format.DefaultWrapWidth,
		},
		{
			ID:          "articlemaster",
			Name:        "ArticleMaster",
			Title:       "ArticleMaster: Your AI Writing Assistant",
			Description: "Writing assistant; the first line becomes a heading and bold sections are highlighted.",
			Format:      format.ModeSections,
			Artifact:    true,
		},
		{
			ID:          "sentiment",
			Name:        "Sentiment-Aware ChatBot",
			Title:       "Sentiment-Aware ChatBot 🤖",
			Description: "Plain chat with a sentiment score on every reply and a running trend.",
			Format:      format.ModeWrap,
			WrapWidth:   format.DefaultWrapWidth,
			Sentiment:   true,
		},
	}
}
