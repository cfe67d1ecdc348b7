package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/rag/llm"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"google.golang.org/genai"
)

type Config struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewGeminiClient(ctx context.Context, cfg Config) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = config.GeminiModelName
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	log := logger_i.NewLogger("llm_gemini")
	log.Info("Gemini client created", "model", cfg.Model)
	return &llmClient{client: c, modelName: cfg.Model, logger: log}, nil
}

func (c *llmClient) Name() string { return "gemini:" + c.modelName }

func (c *llmClient) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)},
	)
	if err != nil {
		c.logger.WithTrace(ctx).Error("Gemini generation failed", "error", err)
		return "", fmt.Errorf("gemini: %w", err)
	}
	return result.Text(), nil
}
