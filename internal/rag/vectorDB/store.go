package vectorDB

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
	"github.com/akolanti/DocAssistant/internal/metrics"
	"github.com/akolanti/DocAssistant/internal/rag/embedding"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/google/uuid"
)

// Overfetch is the candidate multiplier used when a metadata filter is present.
const Overfetch = 10

const embeddingPreviewLength = 5

// Store owns ingestion and scoped similarity search on top of a Backend. The
// backend's own filter predicate is treated as unreliable: filtered searches
// pull k*Overfetch unfiltered neighbours and match metadata in process.
type Store struct {
	backend  Backend
	embedder embedding.Embedder
	logger   *logger_i.Logger
	newId    func() string
}

func NewStore(backend Backend, embedder embedding.Embedder) *Store {
	return &Store{
		backend:  backend,
		embedder: embedder,
		logger:   logger_i.NewLogger("vector_store"),
		newId:    func() string { return uuid.New().String() },
	}
}

func (s *Store) BackendName() string {
	return s.backend.Name()
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// Ingest embeds all chunks in one batched call and writes them in order.
// Returns the persisted ids in input order. If the write fails the rows of this
// batch are deleted again on a best effort basis.
func (s *Store) Ingest(ctx context.Context, chunks []commonModels.Chunk) ([]string, error) {
	log := s.logger.WithTrace(ctx)
	if len(chunks) == 0 {
		return []string{}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	start := time.Now()
	vectors, err := s.embedder.BatchEmbedding(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.Ingestion, err, "embedding %d chunks failed", len(chunks))
	}
	if len(vectors) != len(chunks) {
		return nil, ragErrors.New(ragErrors.Ingestion, "embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	rows := make([]commonModels.Chunk, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) != s.embedder.Dimension() {
			return nil, ragErrors.New(ragErrors.Ingestion, "vector %d has dimension %d, store expects %d", i, len(vectors[i]), s.embedder.Dimension())
		}
		ids[i] = s.newId()
		rows[i] = commonModels.Chunk{
			Id:        ids[i],
			Content:   c.Content,
			Metadata:  c.Metadata.Clone(),
			Embedding: vectors[i],
		}
	}

	start = time.Now()
	err = s.backend.Insert(ctx, rows)
	metrics.CaptureExecutionMetrics("vector_insert", time.Since(start))
	if err != nil {
		log.Error("Insert failed, removing partial batch", "error", err, "chunks", len(rows))
		if delErr := s.backend.Delete(context.WithoutCancel(ctx), ids); delErr != nil {
			log.Error("Could not remove partial batch, rows may remain queryable", "error", delErr)
		}
		return nil, ragErrors.Wrap(ragErrors.Ingestion, err, "writing %d chunks to %s failed", len(rows), s.backend.Name())
	}
	log.Debug("Ingested chunks", "count", len(rows), "backend", s.backend.Name())
	return ids, nil
}

// Search returns at most k results ordered by descending score. With a filter,
// only chunks whose metadata equals every filter pair are returned, which may
// be fewer than k.
func (s *Store) Search(ctx context.Context, query string, k int, filter commonModels.Filter) ([]commonModels.RetrievalResult, error) {
	log := s.logger.WithTrace(ctx)
	if k <= 0 {
		return []commonModels.RetrievalResult{}, nil
	}

	start := time.Now()
	vector, err := s.embedder.GetEmbedding(ctx, query)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.Retrieval, err, "embedding the query failed")
	}

	limit := k
	if len(filter) > 0 {
		limit = k * Overfetch
	}

	start = time.Now()
	candidates, err := s.backend.Nearest(ctx, vector, limit)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.Retrieval, err, "%s search failed", s.backend.Name())
	}
	metrics.AddRetrievalCandidates(len(candidates))

	results, rejected := postFilter(candidates, k, filter)
	if len(filter) > 0 {
		metrics.AddRetrievalFilteredOut(rejected)
		log.Debug("Post-filtered candidates", "candidates", len(candidates), "rejected", rejected, "kept", len(results), "k", k)
	}
	return results, nil
}

// ResolveLatestScope builds a source filter for the most recently persisted
// chunk. An empty store yields a nil filter.
func (s *Store) ResolveLatestScope(ctx context.Context) (commonModels.Filter, error) {
	latest, err := s.backend.NewestFirst(ctx, 1, false)
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.Retrieval, err, "reading latest chunk failed")
	}
	if len(latest) == 0 {
		return nil, nil
	}
	source := latest[0].Metadata.Source()
	if source == "" {
		return nil, nil
	}
	return commonModels.Filter{commonModels.MetaSource: source}, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.backend.Count(ctx)
	if err != nil {
		return 0, ragErrors.Wrap(ragErrors.Retrieval, err, "counting chunks failed")
	}
	return n, nil
}

// ListUniqueSources returns one entry per source, most recent first.
func (s *Store) ListUniqueSources(ctx context.Context) ([]commonModels.SourceSummary, error) {
	rows, err := s.backend.NewestFirst(ctx, 0, false)
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.Retrieval, err, "listing chunks failed")
	}
	seen := make(map[string]bool)
	out := make([]commonModels.SourceSummary, 0)
	for _, r := range rows {
		src := r.Metadata.Source()
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, commonModels.SourceSummary{
			Source:     src,
			DocumentId: r.Metadata.DocumentId(),
			FileType:   r.Metadata.FileType(),
			ChunkId:    r.Id,
		})
	}
	return out, nil
}

// Inspect returns a debug view of the newest limit rows.
func (s *Store) Inspect(ctx context.Context, limit int) ([]commonModels.EmbeddingInfo, error) {
	rows, err := s.backend.NewestFirst(ctx, limit, true)
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.Retrieval, err, "reading chunks failed")
	}
	out := make([]commonModels.EmbeddingInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, commonModels.EmbeddingInfo{
			Id:           r.Id,
			Source:       r.Metadata.Source(),
			HasEmbedding: len(r.Embedding) > 0,
			Length:       len(r.Embedding),
			Preview:      r.Embedding[:min(embeddingPreviewLength, len(r.Embedding))],
		})
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.backend.Delete(ctx, ids); err != nil {
		return fmt.Errorf("delete %d chunks: %w", len(ids), err)
	}
	return nil
}

func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.backend.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear %s: %w", s.backend.Name(), err)
	}
	s.logger.WithTrace(ctx).Info("Cleared all chunks", "backend", s.backend.Name())
	return nil
}

// postFilter keeps the first k candidates matching filter, clamping their
// scores. rejected counts only candidates examined before k were kept.
func postFilter(candidates []commonModels.RetrievalResult, k int, filter commonModels.Filter) (results []commonModels.RetrievalResult, rejected int) {
	results = make([]commonModels.RetrievalResult, 0, min(k, len(candidates)))
	for _, c := range candidates {
		if len(results) == k {
			break
		}
		if len(filter) > 0 && !filter.Matches(c.Chunk.Metadata) {
			rejected++
			continue
		}
		c.Score = clampScore(c.Score)
		results = append(results, c)
	}
	return results, rejected
}

func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
