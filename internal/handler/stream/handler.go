package stream

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"github.com/zhouzirui/chatbox/backend/internal/analysis/sentiment"
	chatHandler "github.com/zhouzirui/chatbox/backend/internal/handler/chat"
	"github.com/zhouzirui/chatbox/backend/internal/model/chat"
	chatService "github.com/zhouzirui/chatbox/backend/internal/service/chat"
	"github.com/zhouzirui/chatbox/backend/pkg/utils"
)

// Handler manages streaming AI responses via Server-Sent Events
type Handler struct {
	chatSvc *chatService.Service
	decoder *schema.Decoder
	submit  []func(http.Handler) http.Handler
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, submit ...func(http.Handler) http.Handler) *Handler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &Handler{
		chatSvc: chatSvc,
		decoder: decoder,
		submit:  submit,
	}
}

// RegisterRoutes mounts the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.submit...).Get("/stream/{sessionID}", h.handleStream)
}

// StreamQuery is the query string of a stream request.
type StreamQuery struct {
	Message string `schema:"message"`
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string             `json:"event"`
	SessionID string             `json:"sessionId,omitempty"`
	VariantID string             `json:"variantId,omitempty"`
	Content   string             `json:"content,omitempty"`
	Turn      *chat.Turn         `json:"turn,omitempty"`
	Sentiment *sentiment.Result  `json:"sentiment,omitempty"`
	Summary   *sentiment.Summary `json:"summary,omitempty"`
	Finished  bool               `json:"finished,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	var query StreamQuery
	if err := h.decoder.Decode(&query, r.URL.Query()); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	if query.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	conversation, err := h.chatSvc.Conversation(sessionID)
	if err != nil {
		utils.RespondError(w, chatHandler.StatusFor(err), err.Error())
		return
	}

	sse, err := utils.NewSSEWriter(w)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sse.Send(StreamResponse{
		Event:     "start",
		SessionID: sessionID,
		VariantID: conversation.Variant().ID,
	})

	turn, err := conversation.SubmitStream(r.Context(), query.Message, func(delta string) {
		sse.Send(StreamResponse{
			Event:     "delta",
			SessionID: sessionID,
			Content:   delta,
		})
	})
	if err != nil {
		log.Printf("[stream] submit failed session=%s: %v", sessionID, err)
		sse.Send(StreamResponse{
			Event:     "error",
			SessionID: sessionID,
			Error:     chatHandler.ErrorMessage(err),
		})
		return
	}

	sse.Send(StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   turn.Content,
		Turn:      &turn,
	})

	if turn.Sentiment != nil {
		summary := conversation.Summary()
		sse.Send(StreamResponse{
			Event:     "sentiment",
			SessionID: sessionID,
			Sentiment: turn.Sentiment,
			Summary:   &summary,
		})
	}

	sse.Send(StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed response for session=%s, variant=%s", sessionID, conversation.Variant().ID)
}
