package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/chatbox/backend/internal/analysis/sentiment"
	"github.com/zhouzirui/chatbox/backend/internal/format"
	"github.com/zhouzirui/chatbox/backend/internal/model/chat"
	"github.com/zhouzirui/chatbox/backend/internal/model/variant"
)

// Completer returns one assistant message for the full turn history.
type Completer interface {
	Complete(ctx context.Context, turns []chat.Turn) (string, error)
}

// StreamCompleter is implemented by completers that can report partial
// content while the reply is generated.
type StreamCompleter interface {
	CompleteStream(ctx context.Context, turns []chat.Turn, onDelta func(string)) (string, error)
}

// ArtifactWriter stores the rendered HTML of the latest article.
type ArtifactWriter interface {
	Write(html string) error
}

// State is the position of a conversation in its submit cycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingCompletion
)

func (s State) String() string {
	if s == StateAwaitingCompletion {
		return "awaiting_completion"
	}
	return "idle"
}

// Conversation is the append-only turn log of one session together with the
// submit state machine that grows it. At most one submit runs at a time.
type Conversation struct {
	mu        sync.RWMutex
	session   chat.Session
	variant   variant.Variant
	formatter format.Formatter
	client    Completer
	artifacts ArtifactWriter
	timeout   time.Duration
	state     State
	turns     []chat.Turn
}

// NewConversation creates an empty conversation for session. artifacts may
// be nil; a zero timeout leaves the completion call unbounded.
func NewConversation(session chat.Session, v variant.Variant, client Completer, artifacts ArtifactWriter, timeout time.Duration) *Conversation {
	return &Conversation{
		session:   session,
		variant:   v,
		formatter: v.Formatter(),
		client:    client,
		artifacts: artifacts,
		timeout:   timeout,
		turns:     make([]chat.Turn, 0, 16),
	}
}

// Session returns the session metadata.
func (c *Conversation) Session() chat.Session {
	return c.session
}

// Variant returns the variant the conversation was created with.
func (c *Conversation) Variant() variant.Variant {
	return c.variant
}

// State reports whether a submit is in flight.
func (c *Conversation) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Submit appends text as a user turn, asks the completion client for a reply
// and appends the formatted reply. On failure the user turn stays in the log
// and no assistant turn is added.
func (c *Conversation) Submit(ctx context.Context, text string) (chat.Turn, error) {
	return c.submit(ctx, text, nil)
}

// SubmitStream is Submit with raw content deltas reported to onDelta when the
// client supports streaming. Formatting and scoring run on the full reply.
func (c *Conversation) SubmitStream(ctx context.Context, text string, onDelta func(string)) (chat.Turn, error) {
	return c.submit(ctx, text, onDelta)
}

func (c *Conversation) submit(ctx context.Context, text string, onDelta func(string)) (chat.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Turn{}, ErrEmptyInput
	}

	c.mu.Lock()
	if c.state == StateAwaitingCompletion {
		c.mu.Unlock()
		return chat.Turn{}, ErrBusy
	}
	c.turns = append(c.turns, newTurn(chat.RoleUser, text))
	c.state = StateAwaitingCompletion
	history := append([]chat.Turn(nil), c.turns...)
	c.mu.Unlock()

	raw, err := c.complete(ctx, history, onDelta)
	if err != nil {
		c.setState(StateIdle)
		log.Printf("[chat] completion failed session=%s: %v", c.session.ID, err)
		return chat.Turn{}, &CompletionError{Err: err}
	}

	result := c.formatter.Format(raw)
	turn := newTurn(chat.RoleAssistant, result.Content)
	turn.Title = result.Title
	if c.variant.Sentiment {
		scored := sentiment.Analyze(result.Content)
		turn.Sentiment = &scored
	}

	c.mu.Lock()
	c.turns = append(c.turns, turn)
	c.state = StateIdle
	c.mu.Unlock()

	if c.variant.Artifact && c.artifacts != nil {
		if err := c.artifacts.Write(result.Content); err != nil {
			log.Printf("[chat] artifact write failed session=%s: %v", c.session.ID, err)
		}
	}

	log.Printf("[chat] assistant turn appended session=%s variant=%s length=%d", c.session.ID, c.variant.ID, len(turn.Content))
	return cloneTurn(turn), nil
}

func (c *Conversation) complete(ctx context.Context, history []chat.Turn, onDelta func(string)) (string, error) {
	if c.client == nil {
		return "", ErrNoCompleter
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if streamer, ok := c.client.(StreamCompleter); ok && onDelta != nil {
		return streamer.CompleteStream(ctx, history, onDelta)
	}

	text, err := c.client.Complete(ctx, history)
	if err != nil {
		return "", err
	}
	if onDelta != nil && text != "" {
		onDelta(text)
	}
	return text, nil
}

func (c *Conversation) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Turns returns a copy of the turn log in insertion order.
func (c *Conversation) Turns() []chat.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	copied := make([]chat.Turn, len(c.turns))
	for i, turn := range c.turns {
		copied[i] = cloneTurn(turn)
	}
	return copied
}

// Sentiments returns the sentiment of every assistant turn in order. It is
// empty when the variant does not track sentiment.
func (c *Conversation) Sentiments() []sentiment.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make([]sentiment.Result, 0, len(c.turns)/2)
	for _, turn := range c.turns {
		if turn.Role == chat.RoleAssistant && turn.Sentiment != nil {
			results = append(results, *turn.Sentiment)
		}
	}
	return results
}

// Summary aggregates the sentiment of the conversation so far.
func (c *Conversation) Summary() sentiment.Summary {
	if !c.variant.Sentiment {
		return sentiment.Summary{}
	}
	return sentiment.Summarize(c.Sentiments())
}

func newTurn(role chat.Role, content string) chat.Turn {
	return chat.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func cloneTurn(turn chat.Turn) chat.Turn {
	if turn.Sentiment != nil {
		scored := *turn.Sentiment
		turn.Sentiment = &scored
	}
	return turn
}
