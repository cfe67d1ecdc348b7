package anthropicLLM

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/rag/llm"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int64
	HTTPClient *http.Client
}

type client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	logger    *logger_i.Logger
}

func NewAnthropicClient(cfg Config) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = config.AnthropicModelName
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = config.AnthropicMaxTokens
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	log := logger_i.NewLogger("llm_anthropic")
	log.Info("Anthropic client created", "model", cfg.Model)
	return &client{
		api:       anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    log,
	}, nil
}

func (c *client) Name() string { return "anthropic:" + c.model }

func (c *client) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(float64(temperature)),
	})
	if err != nil {
		c.logger.WithTrace(ctx).Error("Anthropic message failed", "error", err)
		return "", fmt.Errorf("anthropic: %w", err)
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
