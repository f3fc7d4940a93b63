package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatHandler "github.com/zhouzirui/chatbox/backend/internal/handler/chat"
	"github.com/zhouzirui/chatbox/backend/internal/middleware"
	chatservice "github.com/zhouzirui/chatbox/backend/internal/service/chat"
)

const (
	defaultReadTimeout = 60 * time.Second
	writeTimeout       = 10 * time.Second
)

// Limiter throttles completions requested by one client.
type Limiter interface {
	Allow(client string) bool
}

// Handler WebSocket聊天处理器
type Handler struct {
	chatSvc     *chatservice.Service
	limiter     Limiter
	readTimeout time.Duration
	upgrader    websocket.Upgrader
}

// New 创建WebSocket处理器; limiter 为 nil 时不限流
func New(chatSvc *chatservice.Service, limiter Limiter) *Handler {
	return &Handler{
		chatSvc:     chatSvc,
		limiter:     limiter,
		readTimeout: defaultReadTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

// ConfigMessage 配置消息
type ConfigMessage struct {
	StreamMode *bool `json:"streamMode,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type connectionState struct {
	sessionID  string
	client     string
	streamMode bool
}

// conn serialises writes; gorilla allows one concurrent writer.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conversation, err := h.chatSvc.Conversation(sessionID)
	if err != nil {
		http.Error(w, err.Error(), chatHandler.StatusFor(err))
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	c := &conn{ws: ws}
	state := &connectionState{
		sessionID:  sessionID,
		client:     middleware.ClientAddr(r),
		streamMode: true,
	}

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	go h.pingLoop(ctx, c)

	h.sendInfo(c, sessionID, map[string]any{
		"type":    "connected",
		"variant": conversation.Variant().ID,
	})

	for {
		// The deadline counts from the start of each read, not from the last message.
		ws.SetReadDeadline(time.Now().Add(h.readTimeout))

		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(c, "session mismatch")
			continue
		}

		h.handleMessage(ctx, c, conversation, state, &msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, c *conn, conversation *chatservice.Conversation, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		h.handleTextMessage(ctx, c, conversation, state, msg.Data)
	case "config":
		var cfg ConfigMessage
		if err := json.Unmarshal(msg.Data, &cfg); err != nil {
			h.sendError(c, "invalid config payload")
			return
		}
		applyConfig(state, cfg)
		h.sendInfo(c, state.sessionID, map[string]any{
			"type":       "config",
			"streamMode": state.streamMode,
		})
	default:
		h.sendError(c, "unsupported message type: "+msg.Type)
	}
}

func (h *Handler) handleTextMessage(ctx context.Context, c *conn, conversation *chatservice.Conversation, state *connectionState, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(c, "invalid text payload")
		return
	}

	if strings.TrimSpace(text.Text) == "" {
		h.sendError(c, chatservice.ErrEmptyInput.Error())
		return
	}

	if h.limiter != nil && !h.limiter.Allow(state.client) {
		log.Printf("[websocket] rate limited client=%s session=%s", state.client, state.sessionID)
		h.sendError(c, "too many requests")
		return
	}

	h.sendInfo(c, state.sessionID, map[string]any{
		"type": "user",
		"text": text.Text,
	})

	var onDelta func(string)
	if state.streamMode {
		onDelta = func(delta string) {
			h.sendInfo(c, state.sessionID, map[string]any{
				"type":  "ai_delta",
				"delta": delta,
			})
		}
	}

	turn, err := conversation.SubmitStream(ctx, text.Text, onDelta)
	if err != nil {
		log.Printf("[websocket] submit failed session=%s: %v", state.sessionID, err)
		h.sendError(c, chatHandler.ErrorMessage(err))
		return
	}

	h.sendInfo(c, state.sessionID, map[string]any{
		"type": "ai",
		"turn": turn,
	})

	if turn.Sentiment != nil {
		h.sendInfo(c, state.sessionID, map[string]any{
			"type":      "sentiment",
			"sentiment": turn.Sentiment,
			"summary":   conversation.Summary(),
		})
	}
}

func applyConfig(state *connectionState, cfg ConfigMessage) {
	if cfg.StreamMode != nil {
		state.streamMode = *cfg.StreamMode
	}
}

func (h *Handler) sendInfo(c *conn, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[websocket] write info failed: %v", err)
	}
}

func (h *Handler) sendError(c *conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(h.readTimeout * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
