package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/chatbox/backend/internal/config"
	"github.com/zhouzirui/chatbox/backend/internal/handler/chat"
	"github.com/zhouzirui/chatbox/backend/internal/handler/stream"
	variantHandler "github.com/zhouzirui/chatbox/backend/internal/handler/variant"
	"github.com/zhouzirui/chatbox/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/chatbox/backend/internal/middleware"
	"github.com/zhouzirui/chatbox/backend/internal/model/variant"
	chatService "github.com/zhouzirui/chatbox/backend/internal/service/chat"
	"github.com/zhouzirui/chatbox/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg config.ServerConfig, variants variant.Store, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.AllowedOrigins))

	// Submitting a message costs one completion call, so it is throttled per client.
	limiter := middlewarePkg.NewRateLimiter(cfg.SubmitRate, cfg.SubmitBurst)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		variantHandler.New(variants).RegisterRoutes(api)
		chat.New(chatSvc, limiter.Handler).RegisterRoutes(api)
		stream.New(chatSvc, limiter.Handler).RegisterRoutes(api)
		ws.New(chatSvc, limiter).RegisterRoutes(api)
	})

	return r
}
