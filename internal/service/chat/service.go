package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/chatbox/backend/internal/analysis/sentiment"
	"github.com/zhouzirui/chatbox/backend/internal/model/chat"
	"github.com/zhouzirui/chatbox/backend/internal/model/variant"
)

// Options tune the conversations created by a Service.
type Options struct {
	// CompletionTimeout bounds each completion call. Zero means no bound.
	CompletionTimeout time.Duration
	// Artifacts receives the rendered article of artifact-enabled variants.
	Artifacts ArtifactWriter
}

// Service owns one Conversation per session. The registry lock only guards
// the session map; each conversation serialises its own submits.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Conversation
	variants variant.Store
	client   Completer
	opts     Options
}

// NewService bootstraps the in-memory session registry.
func NewService(variants variant.Store, client Completer, opts Options) *Service {
	if variants == nil {
		variants = variant.NewMemoryStore(variant.Seed())
	}
	return &Service{
		sessions: make(map[string]*Conversation),
		variants: variants,
		client:   client,
		opts:     opts,
	}
}

// CreateSession provisions an anonymous session bound to a variant.
func (s *Service) CreateSession(_ context.Context, variantID string) (chat.Session, error) {
	if variantID == "" {
		return chat.Session{}, ErrVariantRequired
	}

	v, ok := s.variants.FindByID(variantID)
	if !ok {
		return chat.Session{}, ErrVariantNotFound
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		VariantID: v.ID,
		CreatedAt: time.Now().UTC(),
	}

	conversation := NewConversation(session, v, s.client, s.opts.Artifacts, s.opts.CompletionTimeout)

	s.mu.Lock()
	s.sessions[session.ID] = conversation
	s.mu.Unlock()

	log.Printf("[chat] session created id=%s variant=%s", session.ID, v.ID)
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	conversation, err := s.Conversation(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return conversation.Session(), nil
}

// Conversation returns the live conversation of a session.
func (s *Service) Conversation(sessionID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return conversation, nil
}

// Submit sends text to the session's conversation.
func (s *Service) Submit(ctx context.Context, sessionID, text string) (chat.Turn, error) {
	conversation, err := s.Conversation(sessionID)
	if err != nil {
		return chat.Turn{}, err
	}
	return conversation.Submit(ctx, text)
}

// SubmitStream sends text to the session's conversation, reporting deltas.
func (s *Service) SubmitStream(ctx context.Context, sessionID, text string, onDelta func(string)) (chat.Turn, error) {
	conversation, err := s.Conversation(sessionID)
	if err != nil {
		return chat.Turn{}, err
	}
	return conversation.SubmitStream(ctx, text, onDelta)
}

// LoadTranscript returns the turns of the session in order.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Turn, error) {
	conversation, err := s.Conversation(sessionID)
	if err != nil {
		return nil, err
	}
	return conversation.Turns(), nil
}

// Summary returns the sentiment summary of the session.
func (s *Service) Summary(_ context.Context, sessionID string) (sentiment.Summary, error) {
	conversation, err := s.Conversation(sessionID)
	if err != nil {
		return sentiment.Summary{}, err
	}
	return conversation.Summary(), nil
}

// EndSession discards the session and its turn log.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	log.Printf("[chat] session ended id=%s", sessionID)
	return nil
}
