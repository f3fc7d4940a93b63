package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/chatbox/backend/internal/config"
	"github.com/zhouzirui/chatbox/backend/internal/handler"
	"github.com/zhouzirui/chatbox/backend/internal/model/variant"
	"github.com/zhouzirui/chatbox/backend/internal/service/ai"
	"github.com/zhouzirui/chatbox/backend/internal/service/artifact"
	"github.com/zhouzirui/chatbox/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	// A missing credential is fatal here, before any request is served.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	completer, err := newCompleter(ctx, cfg.Completion)
	if err != nil {
		log.Fatalf("failed to initialize completion client: %v", err)
	}
	log.Printf("completion client ready provider=%s model=%s stream=%t", cfg.Completion.Provider, cfg.Completion.Model, cfg.Completion.StreamResponse)

	variantStore := variant.NewMemoryStore(variant.Seed())
	chatService := chat.NewService(variantStore, completer, chat.Options{
		CompletionTimeout: cfg.Completion.Timeout,
		Artifacts:         artifact.NewWriter(cfg.Chat.ArtifactPath),
	})

	router := handler.NewRouter(cfg.Server, variantStore, chatService)

	startServer(ctx, cfg.Server, router)
}

func newCompleter(ctx context.Context, cfg config.CompletionConfig) (chat.Completer, error) {
	switch cfg.Provider {
	case config.ProviderArk:
		svc, err := ai.NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case config.ProviderOpenAI:
		return ai.NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chatbox backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
