package vectorDB

import (
	"context"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
)

// Backend is the persistent store client. Its native metadata filtering is
// never used: Store filters candidates itself.
type Backend interface {
	// Insert writes chunks (ids and embeddings already set) in order. Persistence
	// order must follow input order.
	Insert(ctx context.Context, chunks []commonModels.Chunk) error
	// Nearest returns up to limit chunks by descending similarity, unfiltered.
	Nearest(ctx context.Context, vector []float32, limit int) ([]commonModels.RetrievalResult, error)
	// NewestFirst returns chunks in reverse persistence order. limit <= 0 means all.
	// Embeddings are included only when withEmbeddings is set.
	NewestFirst(ctx context.Context, limit int, withEmbeddings bool) ([]commonModels.Chunk, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, ids []string) error
	DeleteAll(ctx context.Context) error
	Name() string
	Close() error
}
