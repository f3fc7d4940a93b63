package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/chatbox/backend/internal/config"
	"github.com/zhouzirui/chatbox/backend/internal/model/chat"
)

// ErrEmptyCompletion is returned when the model produced no message at all.
var ErrEmptyCompletion = errors.New("completion returned no message")

// Options tunes how turns are sent to the model.
type Options struct {
	Streaming    bool
	HistoryLimit int
}

// Service runs chat completions through an eino chain.
type Service struct {
	chatModel model.BaseChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
	opts      Options
}

// NewService creates the Ark-backed completion service from configuration.
func NewService(ctx context.Context, cfg config.CompletionConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return NewServiceWithModel(ctx, chatModel, Options{
		Streaming:    cfg.StreamResponse,
		HistoryLimit: cfg.ContextTurnLimit,
	})
}

// NewServiceWithModel compiles the completion chain around an existing model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, opts Options) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("history", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		chain:     runnable,
		opts:      opts,
	}, nil
}

// StreamingEnabled 指示是否开启流式输出。
func (s *Service) StreamingEnabled() bool {
	return s.opts.Streaming
}

// Complete sends the turn history and returns the assistant reply.
func (s *Service) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(turns))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil {
		return "", ErrEmptyCompletion
	}

	log.Printf("[ai] generated response turns=%d length=%d", len(turns), len(response.Content))
	return response.Content, nil
}

// CompleteStream behaves like Complete but reports content deltas as they
// arrive. With streaming disabled the whole reply is reported as one delta.
func (s *Service) CompleteStream(ctx context.Context, turns []chat.Turn, onDelta func(string)) (string, error) {
	if !s.StreamingEnabled() {
		text, err := s.Complete(ctx, turns)
		if err != nil {
			return "", err
		}
		emit(onDelta, text)
		return text, nil
	}

	stream, err := s.chain.Stream(ctx, s.buildChainInput(turns))
	if err != nil {
		return "", fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", fmt.Errorf("ai stream recv failed: %w", recvErr)
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, chunk)
		emit(onDelta, chunk.Content)
	}

	if len(chunks) == 0 {
		return "", ErrEmptyCompletion
	}

	merged, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", fmt.Errorf("concat ai chunks failed: %w", err)
	}

	log.Printf("[ai] streamed response turns=%d chunks=%d length=%d", len(turns), len(chunks), len(merged.Content))
	return merged.Content, nil
}

func (s *Service) buildChainInput(turns []chat.Turn) map[string]any {
	return map[string]any{
		"history": buildHistoryMessages(Window(turns, s.opts.HistoryLimit)),
	}
}

func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}

func emit(onDelta func(string), text string) {
	if onDelta != nil && text != "" {
		onDelta(text)
	}
}
