package chat

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/chatbox/backend/internal/analysis/sentiment"
	"github.com/zhouzirui/chatbox/backend/internal/model/chat"
	chatService "github.com/zhouzirui/chatbox/backend/internal/service/chat"
	"github.com/zhouzirui/chatbox/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	submit  []func(http.Handler) http.Handler
}

// New 创建聊天处理器; submit 中的中间件只作用于发送消息的路由
func New(chatSvc *chatService.Service, submit ...func(http.Handler) http.Handler) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		submit:  submit,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(s chi.Router) {
		s.Delete("/", h.handleEndSession)
		s.Get("/turns", h.handleListTurns)
		s.Get("/summary", h.handleSummary)
		s.With(h.submit...).Post("/messages", h.handleSubmit)
	})
}

// TurnsResponse 会话历史
type TurnsResponse struct {
	SessionID string      `json:"sessionId"`
	Turns     []chat.Turn `json:"turns"`
}

// SubmitResponse 一次成功提交的结果
type SubmitResponse struct {
	Turn    chat.Turn         `json:"turn"`
	Summary sentiment.Summary `json:"summary"`
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		VariantID string `json:"variantId"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.VariantID)
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleEndSession 结束会话并丢弃历史
func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListTurns(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turns, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, TurnsResponse{SessionID: sessionID, Turns: turns})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.chatSvc.Summary(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, summary)
}

// handleSubmit 发送一条用户消息并等待完整回复
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	turn, err := h.chatSvc.Submit(r.Context(), sessionID, payload.Text)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[chat] submit failed session=%s: %v", sessionID, err)
		}
		utils.RespondError(w, status, ErrorMessage(err))
		return
	}

	summary, err := h.chatSvc.Summary(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, SubmitResponse{Turn: turn, Summary: summary})
}

// StatusFor 将服务层错误映射为HTTP状态码
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrEmptyInput),
		errors.Is(err, chatService.ErrVariantRequired),
		errors.Is(err, chatService.ErrVariantNotFound):
		return http.StatusBadRequest
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, chatService.ErrCompletionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage 返回展示给用户的错误文本
func ErrorMessage(err error) string {
	if errors.Is(err, chatService.ErrCompletionFailed) {
		return "An error occurred: " + err.Error()
	}
	return err.Error()
}
