package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/rag/embedding"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimension  int
	HTTPClient *http.Client
}

type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

func NewOpenAIEmbedder(cfg Config) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedding: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = config.OpenAIEmbeddingModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// one request per call, retry policy stays with the caller
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	log := logger_i.NewLogger("openai_embedding")
	log.Info("OpenAI Embedding client created", "model", cfg.Model, "dimension", cfg.Dimension)
	return &client{
		api:       openai.NewClient(opts...),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    log,
	}, nil
}

func (c *client) Dimension() int {
	return c.dimension
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	c.logger.WithTrace(ctx).Debug("Batch embedding", "texts", len(texts))
	return embedding.InBatches(ctx, texts, config.EmbeddingBatchSize, c.embed)
}

func (c *client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	if c.dimension > 0 {
		params.Dimensions = param.NewOpt(int64(c.dimension))
	}
	resp, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		c.logger.WithTrace(ctx).Error("Error getting Embeddings from OpenAI", "error", err)
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embedding: got %d vectors for %d texts", len(resp.Data), len(texts))
	}
	return toFloat32(resp.Data), nil
}

// the api reports an index per vector; order by it rather than trusting response order
func toFloat32(data []openai.Embedding) [][]float32 {
	sorted := make([]openai.Embedding, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	out := make([][]float32, len(sorted))
	for i, d := range sorted {
		v := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			v[j] = float32(f)
		}
		out[i] = v
	}
	return out
}
