package variant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/chatbox/backend/internal/model/variant"
	"github.com/zhouzirui/chatbox/backend/pkg/utils"
)

// Handler variant目录的HTTP处理器
type Handler struct {
	variants variant.Store
}

// New 创建variant处理器
func New(variants variant.Store) *Handler {
	return &Handler{
		variants: variants,
	}
}

// RegisterRoutes 注册variant相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/variants", h.handleListVariants)
	r.Get("/variants/{variantID}", h.handleGetVariant)
}

// handleListVariants 列出所有variant
func (h *Handler) handleListVariants(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.variants.List())
}

func (h *Handler) handleGetVariant(w http.ResponseWriter, r *http.Request) {
	item, ok := h.variants.FindByID(chi.URLParam(r, "variantID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "variant not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}
