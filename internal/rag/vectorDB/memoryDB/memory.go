package memoryDB

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
)

// Storage is an in-process backend using brute-force cosine similarity. Rows
// keep insertion order, which is also their persistence order.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	rows      []commonModels.Chunk
}

func NewStorage(dimension int) *Storage {
	return &Storage{dimension: dimension}
}

func (s *Storage) Name() string { return "memory" }

func (s *Storage) Insert(ctx context.Context, chunks []commonModels.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, c := range chunks {
		if len(c.Embedding) != s.dimension {
			return fmt.Errorf("memory: chunk %s has dimension %d, want %d", c.Id, len(c.Embedding), s.dimension)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		c.Metadata = c.Metadata.Clone()
		s.rows = append(s.rows, c)
	}
	return nil
}

func (s *Storage) Nearest(ctx context.Context, vector []float32, limit int) ([]commonModels.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]commonModels.RetrievalResult, len(s.rows))
	for i, r := range s.rows {
		results[i] = commonModels.RetrievalResult{Chunk: withoutEmbedding(r), Score: cosine(r.Embedding, vector)}
	}
	// stable: ties keep insertion order
	slices.SortStableFunc(results, func(a, b commonModels.RetrievalResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if limit >= 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (s *Storage) NewestFirst(ctx context.Context, limit int, withEmbeddings bool) ([]commonModels.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.rows)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]commonModels.Chunk, 0, n)
	for i := len(s.rows) - 1; i >= 0 && len(out) < n; i-- {
		r := s.rows[i]
		if !withEmbeddings {
			r = withoutEmbedding(r)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Storage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows)), ctx.Err()
}

func (s *Storage) Delete(ctx context.Context, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = slices.DeleteFunc(s.rows, func(c commonModels.Chunk) bool { return drop[c.Id] })
	return nil
}

func (s *Storage) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	return nil
}

func (s *Storage) Close() error { return nil }

func withoutEmbedding(c commonModels.Chunk) commonModels.Chunk {
	c.Embedding = nil
	c.Metadata = c.Metadata.Clone()
	return c
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
