package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// 补全服务提供方。
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

const (
	defaultOpenAIBaseURL = "https://api.groq.com/openai/v1"
	defaultArkBaseURL    = "https://ark.cn-beijing.volces.com/api/v3"
)

// ErrInvalidConfig 表示环境变量取值不合法。
var ErrInvalidConfig = errors.New("invalid configuration")

// Config 聚合整个服务的配置项。
type Config struct {
	Server     ServerConfig
	Completion CompletionConfig
	Chat       ChatConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	SubmitRate     float64  `env:"SUBMIT_RATE_LIMIT" envDefault:"2"`
	SubmitBurst    int      `env:"SUBMIT_RATE_BURST" envDefault:"5"`
	Addr           string
}

// CompletionConfig 描述大模型补全相关配置。
type CompletionConfig struct {
	Provider         string        `env:"COMPLETION_PROVIDER" envDefault:"openai"`
	APIKey           string        `env:"COMPLETION_API_KEY"`
	SecretFile       string        `env:"SECRET_FILE" envDefault:"secret.txt"`
	Model            string        `env:"COMPLETION_MODEL" envDefault:"llama-3.3-70b-versatile"`
	BaseURL          string        `env:"COMPLETION_BASE_URL"`
	Region           string        `env:"ARK_REGION" envDefault:"cn-beijing"`
	Temperature      *float64      `env:"COMPLETION_TEMPERATURE"`
	TopP             *float64      `env:"COMPLETION_TOP_P"`
	MaxTokens        *int          `env:"COMPLETION_MAX_TOKENS"`
	Timeout          time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"60s"`
	StreamResponse   bool          `env:"COMPLETION_STREAM" envDefault:"true"`
	ContextTurnLimit int           `env:"CONTEXT_TURN_LIMIT" envDefault:"0"`
}

// ChatConfig 描述会话层配置。
type ChatConfig struct {
	ArtifactPath string `env:"ARTIFACT_PATH" envDefault:"output.html"`
}

// Load 从环境变量加载配置，并读取一次补全服务凭证。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	addr, err := resolveAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if err := cfg.Completion.normalize(); err != nil {
		return nil, err
	}

	key, err := LoadCredential(cfg.Completion.APIKey, cfg.Completion.SecretFile)
	if err != nil {
		return nil, err
	}
	cfg.Completion.APIKey = key

	return cfg, nil
}

// resolveAddr 解析服务器监听地址。
func resolveAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("%w: PORT %q", ErrInvalidConfig, port)
	}

	return ":" + port, nil
}

func (c *CompletionConfig) normalize() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Model = strings.TrimSpace(c.Model)

	switch c.Provider {
	case ProviderOpenAI:
		if c.BaseURL == "" {
			c.BaseURL = defaultOpenAIBaseURL
		}
	case ProviderArk:
		if c.BaseURL == "" {
			c.BaseURL = defaultArkBaseURL
		}
	default:
		return fmt.Errorf("%w: COMPLETION_PROVIDER %q", ErrInvalidConfig, c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("%w: COMPLETION_MODEL is empty", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: COMPLETION_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.ContextTurnLimit < 0 {
		c.ContextTurnLimit = 0
	}
	return nil
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c CompletionConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.APIKey == "" || c.Model == "" {
		return nil, fmt.Errorf("%w: Ark 凭证或模型配置缺失", ErrMissingCredential)
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}
