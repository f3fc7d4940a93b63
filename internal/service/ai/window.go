package ai

import "github.com/zhouzirui/chatbox/backend/internal/model/chat"

// Window keeps the last limit turns. A limit of zero or less sends the whole
// history, which grows without bound over a long session.
func Window(turns []chat.Turn, limit int) []chat.Turn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}
