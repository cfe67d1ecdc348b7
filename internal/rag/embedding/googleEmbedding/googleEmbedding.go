package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/rag/embedding"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

type Config struct {
	APIKey     string
	Model      string
	Dimension  int
	HTTPClient *http.Client
}

func NewGoogleEmbedder(ctx context.Context, cfg Config) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google embedding: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = config.GoogleEmbeddingModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("google embedding: create client: %w", err)
	}
	log := logger_i.NewLogger("google_embedding")
	log.Info("Google Embedding client created", "model", cfg.Model, "dimension", cfg.Dimension)
	return &client{
		genAi:     c,
		model:     cfg.Model,
		dimension: int32(cfg.Dimension),
		logger:    log,
	}, nil
}

func (c *client) Dimension() int {
	return int(c.dimension)
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := c.logger.WithTrace(ctx)
	res, err := c.doCall(ctx, genai.Text(query), taskQuery)
	if err != nil {
		logRateLimit(err, log)
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	if len(res.Embeddings) == 0 {
		return nil, errors.New("google embedding: empty response")
	}
	return res.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := c.logger.WithTrace(ctx)
	log.Debug("Batch embedding", "texts", len(chunks))
	return embedding.InBatches(ctx, chunks, config.EmbeddingBatchSize, func(ctx context.Context, batch []string) ([][]float32, error) {
		res, err := c.doCall(ctx, getContent(batch), taskDocument)
		if err != nil {
			logRateLimit(err, log)
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, err
		}
		if len(res.Embeddings) != len(batch) {
			return nil, fmt.Errorf("google embedding: got %d vectors for %d texts", len(res.Embeddings), len(batch))
		}
		vectors := make([][]float32, 0, len(batch))
		for _, r := range res.Embeddings {
			vectors = append(vectors, r.Values)
		}
		return vectors, nil
	})
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, task string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             task,
	})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

// retries belong to the caller, this only makes quota failures visible in the logs
func logRateLimit(err error, log *logger_i.Logger) {
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		log.Warn("Rate limit hit", "error", err)
	}
}
