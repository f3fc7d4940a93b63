package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/zhouzirui/chatbox/backend/internal/config"
	"github.com/zhouzirui/chatbox/backend/internal/model/chat"
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint, such
// as Groq. Automatic retries are disabled.
type OpenAIClient struct {
	client      openai.Client
	model       string
	temperature *float64
	topP        *float64
	maxTokens   *int
	opts        Options
}

// NewOpenAIClient builds a client from configuration.
func NewOpenAIClient(cfg config.CompletionConfig) *OpenAIClient {
	baseURL := cfg.BaseURL
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(baseURL))
	}

	return &OpenAIClient{
		client:      openai.NewClient(requestOpts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
		opts: Options{
			Streaming:    cfg.StreamResponse,
			HistoryLimit: cfg.ContextTurnLimit,
		},
	}
}

// StreamingEnabled reports whether CompleteStream uses server-sent chunks.
func (c *OpenAIClient) StreamingEnabled() bool {
	return c.opts.Streaming
}

// Complete sends the turn history and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	res, err := c.client.Chat.Completions.New(ctx, c.buildParams(turns))
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := res.Choices[0].Message.Content
	log.Printf("[ai] openai-compatible response model=%s turns=%d length=%d", c.model, len(turns), len(content))
	return content, nil
}

// CompleteStream reports content deltas while the reply is generated.
func (c *OpenAIClient) CompleteStream(ctx context.Context, turns []chat.Turn, onDelta func(string)) (string, error) {
	if !c.StreamingEnabled() {
		text, err := c.Complete(ctx, turns)
		if err != nil {
			return "", err
		}
		emit(onDelta, text)
		return text, nil
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, c.buildParams(turns))
	defer stream.Close()

	var builder strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		builder.WriteString(delta)
		emit(onDelta, delta)
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("chat completion stream failed: %w", err)
	}

	return builder.String(), nil
}

func (c *OpenAIClient) buildParams(turns []chat.Turn) openai.ChatCompletionNewParams {
	window := Window(turns, c.opts.HistoryLimit)
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(window))
	for _, turn := range window {
		switch turn.Role {
		case chat.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case chat.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}
	if c.temperature != nil {
		params.Temperature = openai.Float(*c.temperature)
	}
	if c.topP != nil {
		params.TopP = openai.Float(*c.topP)
	}
	if c.maxTokens != nil {
		params.MaxTokens = openai.Int(int64(*c.maxTokens))
	}
	return params
}
