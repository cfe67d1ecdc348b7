package openaiLLM

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/rag/llm"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// Config targets any OpenAI compatible chat endpoint. With no BaseURL set the
// client talks to OpenRouter.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

type client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

func NewOpenAIClient(cfg Config) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.OpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = config.OpenRouterModelName
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	log := logger_i.NewLogger("llm_openai")
	log.Info("OpenAI compatible chat client created", "model", cfg.Model, "baseUrl", cfg.BaseURL)
	return &client{api: openai.NewClient(opts...), model: cfg.Model, logger: log}, nil
}

func (c *client) Name() string { return "openai:" + c.model }

func (c *client) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: param.NewOpt(float64(temperature)),
	})
	if err != nil {
		c.logger.WithTrace(ctx).Error("Chat completion failed", "error", err)
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
