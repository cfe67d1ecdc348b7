package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/customHttpClient"
	"github.com/akolanti/DocAssistant/internal/rag"
	"github.com/akolanti/DocAssistant/internal/rag/chunker"
	"github.com/akolanti/DocAssistant/internal/rag/embedding"
	"github.com/akolanti/DocAssistant/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocAssistant/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/DocAssistant/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocAssistant/internal/rag/ingest"
	"github.com/akolanti/DocAssistant/internal/rag/llm"
	"github.com/akolanti/DocAssistant/internal/rag/llm/anthropicLLM"
	"github.com/akolanti/DocAssistant/internal/rag/llm/gemini"
	"github.com/akolanti/DocAssistant/internal/rag/llm/openaiLLM"
	"github.com/akolanti/DocAssistant/internal/rag/tools"
	"github.com/akolanti/DocAssistant/internal/rag/vectorDB"
	"github.com/akolanti/DocAssistant/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/DocAssistant/internal/rag/vectorDB/pgvectorDB"
	"github.com/akolanti/DocAssistant/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
)

// App holds the process wide collaborators shared by the HTTP server, the
// MCP server and the CLI.
type App struct {
	Settings config.Settings
	Store    *vectorDB.Store
	LLM      llm.Provider
	Loader   *ingest.Loader
	Rag      rag.Service
}

// New builds the embedder, vector backend, model client and orchestrator
// from settings. The caller owns Close.
func New(ctx context.Context, settings config.Settings) (*App, error) {
	log := logger_i.NewLogger("bootstrap")

	embedder, err := NewEmbedder(ctx, settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	backend, err := NewBackend(ctx, settings, embedder.Dimension())
	if err != nil {
		return nil, fmt.Errorf("vector backend: %w", err)
	}
	provider, err := NewLLM(ctx, settings.LLM)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("llm: %w", err)
	}
	splitter, err := chunker.New(settings.Chunking.Size, settings.Chunking.Overlap)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	store := vectorDB.NewStore(backend, embedder)
	loader := ingest.NewLoader()
	a := &App{
		Settings: settings,
		Store:    store,
		LLM:      provider,
		Loader:   loader,
		Rag:      rag.NewService(store, provider, loader, splitter, tools.DefaultRegistry(), settings.LLM.Temperature),
	}
	log.Info("Services ready",
		"backend", backend.Name(),
		"embedding", settings.Embedding.Provider,
		"dimension", embedder.Dimension(),
		"llm", provider.Name())
	return a, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// NewEmbedder returns the configured embedding adapter. Every remote adapter
// shares the pooled transport.
func NewEmbedder(ctx context.Context, s config.EmbeddingSettings) (embedding.Embedder, error) {
	// request contexts carry the deadline
	httpClient := customHttpClient.New(0)
	switch s.Provider {
	case config.EmbeddingProviderGoogle:
		return googleEmbedding.NewGoogleEmbedder(ctx, googleEmbedding.Config{
			APIKey:     s.APIKey,
			Model:      s.Model,
			Dimension:  s.Dimension,
			HTTPClient: httpClient,
		})
	case config.EmbeddingProviderOpenAI:
		return openaiEmbedding.NewOpenAIEmbedder(openaiEmbedding.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimension:  s.Dimension,
			HTTPClient: httpClient,
		})
	case config.EmbeddingProviderHash:
		return hashEmbedding.New(s.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", s.Provider)
	}
}

func NewBackend(ctx context.Context, s config.Settings, dimension int) (vectorDB.Backend, error) {
	switch s.VectorBackend {
	case config.VectorBackendQdrant:
		return qdrantDB.NewClientHolder(ctx, s.Qdrant, dimension)
	case config.VectorBackendPGVector:
		return pgvectorDB.NewStorage(ctx, s.PGVector, dimension)
	case config.VectorBackendMemory:
		return memoryDB.NewStorage(dimension), nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", s.VectorBackend)
	}
}

func NewLLM(ctx context.Context, s config.LLMSettings) (llm.Provider, error) {
	httpClient := customHttpClient.New(0)
	switch s.Provider {
	case config.LLMProviderGemini:
		return gemini.NewGeminiClient(ctx, gemini.Config{
			APIKey:     s.APIKey,
			Model:      s.Model,
			HTTPClient: httpClient,
		})
	case config.LLMProviderOpenAI:
		return openaiLLM.NewOpenAIClient(openaiLLM.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			HTTPClient: httpClient,
		})
	case config.LLMProviderAnthropic:
		return anthropicLLM.NewAnthropicClient(anthropicLLM.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			MaxTokens:  config.AnthropicMaxTokens,
			HTTPClient: httpClient,
		})
	default:
		return nil, errors.New("unknown llm provider " + s.Provider)
	}
}
