package chat

import (
	"time"

	"github.com/zhouzirui/chatbox/backend/internal/analysis/sentiment"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one immutable message in a conversation. Sentiment is only set on
// assistant turns of sessions that track sentiment.
type Turn struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Title     string            `json:"title,omitempty"`
	Sentiment *sentiment.Result `json:"sentiment,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
