package handlers

import (
	"context"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/job"
	"github.com/akolanti/DocAssistant/internal/rag"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
)

// DocumentStore is the document management surface of vectorDB.Store.
type DocumentStore interface {
	Count(ctx context.Context) (int64, error)
	ListUniqueSources(ctx context.Context) ([]commonModels.SourceSummary, error)
	Inspect(ctx context.Context, limit int) ([]commonModels.EmbeddingInfo, error)
	Delete(ctx context.Context, ids []string) error
	ClearAll(ctx context.Context) error
}

// ServiceInfo names the configured collaborators for health output.
type ServiceInfo struct {
	Backend   string
	Embedding string
	LLM       string
}

type Config struct {
	Rag       rag.Service
	Documents DocumentStore
	Jobs      *job.Service
	Info      ServiceInfo
	UploadDir string
}

type Handler struct {
	rag       rag.Service
	documents DocumentStore
	jobs      *job.Service
	info      ServiceInfo
	uploadDir string
	logger    *logger_i.Logger
}

func New(cfg Config) *Handler {
	h := &Handler{
		rag:       cfg.Rag,
		documents: cfg.Documents,
		jobs:      cfg.Jobs,
		info:      cfg.Info,
		uploadDir: cfg.UploadDir,
		logger:    logger_i.NewLogger("RequestHandler"),
	}
	h.logger.Info("Starting request handler", "backend", cfg.Info.Backend, "llm", cfg.Info.LLM)
	return h
}
