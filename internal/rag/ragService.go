package rag

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
	"github.com/akolanti/DocAssistant/internal/metrics"
	"github.com/akolanti/DocAssistant/internal/rag/chunker"
	"github.com/akolanti/DocAssistant/internal/rag/llm"
	"github.com/akolanti/DocAssistant/internal/rag/tools"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/google/uuid"
)

// Service is the only surface handlers, workers, the MCP server and the CLI
// talk to. The private service struct keeps the store, model and loader out
// of their reach, and tests swap them for fakes through NewService.
type Service interface {
	AnswerQuestion(ctx context.Context, q commonModels.Question) (commonModels.Answer, error)
	Ingest(ctx context.Context, upload commonModels.Upload) (commonModels.IngestResult, error)
	ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

// VectorStore is the part of vectorDB.Store the orchestrator needs.
type VectorStore interface {
	Ingest(ctx context.Context, chunks []commonModels.Chunk) ([]string, error)
	Search(ctx context.Context, query string, k int, filter commonModels.Filter) ([]commonModels.RetrievalResult, error)
	ResolveLatestScope(ctx context.Context) (commonModels.Filter, error)
}

type DocumentLoader interface {
	Load(path, filename string) ([]commonModels.Page, error)
}

type ToolRegistry interface {
	Detect(question string) (tools.Call, bool)
	Execute(ctx context.Context, call tools.Call) (string, error)
}

type service struct {
	store       VectorStore
	llmProvider llm.Provider
	loader      DocumentLoader
	chunker     *chunker.Chunker
	tools       ToolRegistry
	temperature float32
	newId       func() string
	logger      *logger_i.Logger
}

func NewService(store VectorStore, provider llm.Provider, loader DocumentLoader, splitter *chunker.Chunker, registry ToolRegistry, temperature float32) Service {
	return &service{
		store:       store,
		llmProvider: provider,
		loader:      loader,
		chunker:     splitter,
		tools:       registry,
		temperature: temperature,
		newId:       func() string { return uuid.New().String() },
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

// AnswerQuestion runs scope resolution, retrieval, optional tool augmentation,
// context assembly, generation and packaging in that order. Retrieval and
// generation failures abort the request; scope and tool failures degrade.
func (s *service) AnswerQuestion(ctx context.Context, q commonModels.Question) (commonModels.Answer, error) {
	log := s.logger.WithTrace(ctx)

	if strings.TrimSpace(q.Text) == "" {
		return commonModels.Answer{}, ragErrors.New(ragErrors.EmptyQuestion, "question must not be empty")
	}
	k, err := resolveMaxResults(q.MaxResults)
	if err != nil {
		return commonModels.Answer{}, err
	}

	filter := s.executeScopeStep(ctx, log, q.Scope)

	retrieved, err := s.executeRetrievalStep(ctx, log, q.Text, k, filter)
	if err != nil {
		return commonModels.Answer{}, err
	}

	var calls []commonModels.ToolInvocation
	if q.UseTools && s.tools != nil {
		retrieved, calls = s.executeToolStep(ctx, log, q.Text, retrieved)
	}

	prompt := BuildPrompt(FormatContext(retrieved), q.Text)
	log.Debug("Assembled prompt", "chunks", len(retrieved), "promptChars", len([]rune(prompt)))

	answer, err := s.executeLLMStep(ctx, log, prompt)
	if err != nil {
		return commonModels.Answer{}, err
	}

	return commonModels.Answer{
		Answer:     answer,
		Retrieved:  retrieved,
		ToolCalls:  calls,
		TokensUsed: EstimateTokens(prompt, answer),
	}, nil
}

// Ingest loads, chunks and stores one uploaded document under a fresh
// document id.
func (s *service) Ingest(ctx context.Context, upload commonModels.Upload) (commonModels.IngestResult, error) {
	log := s.logger.WithTrace(ctx).With("filename", upload.Filename)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	pages, err := s.loader.Load(upload.Path, upload.Filename)
	if err != nil {
		log.Error("Loading document failed", "error", err)
		return commonModels.IngestResult{}, asKind(err, ragErrors.DocumentLoad, "%s: could not load", upload.Filename)
	}

	documentId := s.newId()
	meta := commonModels.Metadata{
		commonModels.MetaSource:     upload.Filename,
		commonModels.MetaDocumentId: documentId,
		commonModels.MetaFileType:   fileType(upload.Filename),
	}
	chunks := s.chunker.SplitPages(pages, meta)
	if len(chunks) == 0 {
		return commonModels.IngestResult{}, ragErrors.New(ragErrors.DocumentLoad, "%s: no extractable text", upload.Filename)
	}
	log.Debug("Chunked document", "pages", len(pages), "chunks", len(chunks))

	ids, err := s.store.Ingest(ctx, chunks)
	if err != nil {
		log.Error("Storing chunks failed", "error", err)
		return commonModels.IngestResult{}, asKind(err, ragErrors.Ingestion, "%s: could not store chunks", upload.Filename)
	}
	metrics.AddChunksIngested(len(ids))
	log.Info("Ingested document", "documentId", documentId, "chunks", len(ids))

	return commonModels.IngestResult{
		DocumentId: documentId,
		Filename:   upload.Filename,
		ChunkCount: len(ids),
		ChunkIds:   ids,
	}, nil
}

func (s *service) ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.WithTrace(ctx).With("JobId", job.Id)
	job.CurrentStep = jobModel.UserQueryInit

	answer, err := s.AnswerQuestion(ctx, job.JobPayload.ToQuestion())
	if err != nil {
		return s.jobError(job, err, log)
	}
	return returnOutput(job, &answer)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.WithTrace(ctx).With("JobId", job.Id)
	job.CurrentStep = jobModel.IngestLoading

	result, err := s.Ingest(ctx, commonModels.Upload{
		Filename: job.JobPayload.IngestFileName,
		Path:     job.JobPayload.IngestURL,
	})
	if err != nil {
		return s.jobError(job, err, log)
	}
	job.JobPayload.IngestResult = &result
	job.CurrentStep = jobModel.Complete
	return job
}

func resolveMaxResults(n int) (int, error) {
	if n == 0 {
		return config.DefaultMaxResults, nil
	}
	if n < config.MinMaxResults || n > config.MaxMaxResults {
		return 0, ragErrors.New(ragErrors.InvalidArgument, "max_results must be between %d and %d, got %d",
			config.MinMaxResults, config.MaxMaxResults, n)
	}
	return n, nil
}

func fileType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// asKind keeps an existing structured error and wraps anything else.
func asKind(err error, kind ragErrors.Kind, format string, args ...any) error {
	if ragErrors.KindOf(err) != ragErrors.Unknown {
		return err
	}
	return ragErrors.Wrap(kind, err, format, args...)
}
