package vectorDB_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
	"github.com/akolanti/DocAssistant/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/DocAssistant/internal/rag/vectorDB"
	"github.com/akolanti/DocAssistant/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyBackend records the limits requested from the wrapped backend and can inject failures.
type spyBackend struct {
	vectorDB.Backend
	limits        []int
	OnInsert      func(ctx context.Context, chunks []commonModels.Chunk) error
	OnNearest     func(ctx context.Context, v []float32, limit int) ([]commonModels.RetrievalResult, error)
	OnNewestFirst func(ctx context.Context, limit int) ([]commonModels.Chunk, error)
	deleted       []string
}

func (s *spyBackend) Insert(ctx context.Context, chunks []commonModels.Chunk) error {
	if s.OnInsert != nil {
		return s.OnInsert(ctx, chunks)
	}
	return s.Backend.Insert(ctx, chunks)
}

func (s *spyBackend) Nearest(ctx context.Context, v []float32, limit int) ([]commonModels.RetrievalResult, error) {
	s.limits = append(s.limits, limit)
	if s.OnNearest != nil {
		return s.OnNearest(ctx, v, limit)
	}
	return s.Backend.Nearest(ctx, v, limit)
}

func (s *spyBackend) NewestFirst(ctx context.Context, limit int, withEmbeddings bool) ([]commonModels.Chunk, error) {
	if s.OnNewestFirst != nil {
		return s.OnNewestFirst(ctx, limit)
	}
	return s.Backend.NewestFirst(ctx, limit, withEmbeddings)
}

func (s *spyBackend) Delete(ctx context.Context, ids []string) error {
	s.deleted = append(s.deleted, ids...)
	return s.Backend.Delete(ctx, ids)
}

const dim = 128

func newStore() (*vectorDB.Store, *spyBackend) {
	spy := &spyBackend{Backend: memoryDB.NewStorage(dim)}
	return vectorDB.NewStore(spy, hashEmbedding.New(dim)), spy
}

func docChunks(docId, source string, texts ...string) []commonModels.Chunk {
	out := make([]commonModels.Chunk, len(texts))
	for i, t := range texts {
		out[i] = commonModels.Chunk{
			Content: t,
			Metadata: commonModels.Metadata{
				commonModels.MetaDocumentId: docId,
				commonModels.MetaSource:     source,
				commonModels.MetaChunkIndex: i,
				commonModels.MetaChunkTotal: len(texts),
			},
		}
	}
	return out
}

func TestIngest_ReturnsIdsInOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()

	ids, err := store.Ingest(ctx, docChunks("d1", "a.txt", "one", "two", "three"))
	require.NoError(t, err)
	require.Len(t, ids, 3)

	rows, err := store.Inspect(ctx, 0)
	require.NoError(t, err)
	// newest first
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{rows[0].Id, rows[1].Id, rows[2].Id})
	assert.True(t, rows[0].HasEmbedding)
	assert.Equal(t, dim, rows[0].Length)
	assert.Len(t, rows[0].Preview, 5)
}

func TestIngest_FailedWriteRemovesBatch(t *testing.T) {
	ctx := context.Background()
	store, spy := newStore()
	spy.OnInsert = func(ctx context.Context, chunks []commonModels.Chunk) error {
		// half the batch lands before the failure
		if err := spy.Backend.Insert(ctx, chunks[:1]); err != nil {
			return err
		}
		return errors.New("connection reset")
	}

	_, err := store.Ingest(ctx, docChunks("d1", "a.txt", "one", "two"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ragErrors.ErrIngestion)
	assert.Len(t, spy.deleted, 2)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearch_EmptyStore(t *testing.T) {
	store, _ := newStore()
	res, err := store.Search(context.Background(), "anything", 4, nil)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = store.Search(context.Background(), "anything", 4, commonModels.Filter{commonModels.MetaSource: "x"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearch_UnfilteredFetchesExactlyK(t *testing.T) {
	ctx := context.Background()
	store, spy := newStore()
	_, err := store.Ingest(ctx, docChunks("d1", "a.txt", "alpha", "beta", "gamma", "delta"))
	require.NoError(t, err)

	res, err := store.Search(ctx, "alpha", 3, nil)
	require.NoError(t, err)
	assert.Len(t, res, 3)
	assert.Equal(t, []int{3}, spy.limits)
	assert.Equal(t, "alpha", res[0].Chunk.Content)
}

func TestSearch_IsolationUnderSimilarContent(t *testing.T) {
	ctx := context.Background()
	store, spy := newStore()

	shared := "Refunds are accepted within thirty days of purchase with a receipt."
	_, err := store.Ingest(ctx, docChunks("doc-1", "one.txt", shared, shared+" Store credit only.", "Shipping is free."))
	require.NoError(t, err)
	_, err = store.Ingest(ctx, docChunks("doc-2", "two.txt", shared, shared+" Cash refunds.", shared+" Gift cards excluded."))
	require.NoError(t, err)

	res, err := store.Search(ctx, "refund within thirty days", 3, commonModels.Filter{commonModels.MetaDocumentId: "doc-1"})
	require.NoError(t, err)

	assert.Equal(t, []int{30}, spy.limits)
	require.NotEmpty(t, res)
	for _, r := range res {
		assert.Equal(t, "doc-1", r.Chunk.Metadata.DocumentId())
	}
	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].Score, res[i].Score)
	}
}

func TestSearch_OverfetchSufficiency(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()

	var a, b []string
	for i := 0; i < 25; i++ {
		a = append(a, fmt.Sprintf("vacation days policy paragraph %d", i))
		b = append(b, fmt.Sprintf("vacation days policy section %d", i))
	}
	_, err := store.Ingest(ctx, docChunks("doc-a", "a.txt", a...))
	require.NoError(t, err)
	_, err = store.Ingest(ctx, docChunks("doc-b", "b.txt", b...))
	require.NoError(t, err)

	res, err := store.Search(ctx, "vacation days policy", 2, commonModels.Filter{commonModels.MetaSource: "b.txt"})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.GreaterOrEqual(t, res[0].Score, res[1].Score)
	for _, r := range res {
		assert.Equal(t, "b.txt", r.Chunk.Metadata.Source())
	}
}

func TestSearch_ShortResultIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	_, err := store.Ingest(ctx, docChunks("doc-1", "one.txt", "only one chunk"))
	require.NoError(t, err)

	res, err := store.Search(ctx, "chunk", 4, commonModels.Filter{commonModels.MetaDocumentId: "doc-1"})
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = store.Search(ctx, "chunk", 4, commonModels.Filter{"tenant": "nobody"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearch_BackendFailureIsRetrievalError(t *testing.T) {
	store, spy := newStore()
	spy.OnNearest = func(ctx context.Context, v []float32, limit int) ([]commonModels.RetrievalResult, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	_, err := store.Search(context.Background(), "q", 2, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ragErrors.ErrRetrieval)
}

func TestSearch_ClampsScores(t *testing.T) {
	store, spy := newStore()
	spy.OnNearest = func(ctx context.Context, v []float32, limit int) ([]commonModels.RetrievalResult, error) {
		return []commonModels.RetrievalResult{
			{Chunk: commonModels.Chunk{Content: "a", Metadata: commonModels.Metadata{}}, Score: 1.2},
			{Chunk: commonModels.Chunk{Content: "b", Metadata: commonModels.Metadata{}}, Score: -0.3},
		}, nil
	}
	res, err := store.Search(context.Background(), "q", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res[0].Score)
	assert.Equal(t, 0.0, res[1].Score)
}

func TestResolveLatestScope(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()

	filter, err := store.ResolveLatestScope(ctx)
	require.NoError(t, err)
	assert.Nil(t, filter)

	_, err = store.Ingest(ctx, docChunks("doc-a", "a.txt", "first document"))
	require.NoError(t, err)
	_, err = store.Ingest(ctx, docChunks("doc-b", "b.txt", "second document"))
	require.NoError(t, err)

	filter, err = store.ResolveLatestScope(ctx)
	require.NoError(t, err)
	assert.Equal(t, commonModels.Filter{commonModels.MetaSource: "b.txt"}, filter)

	res, err := store.Search(ctx, "document", 4, filter)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "b.txt", res[0].Chunk.Metadata.Source())
}

func TestListUniqueSources(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()

	a := docChunks("doc-a", "a.txt", "x", "y")
	a[0].Metadata[commonModels.MetaFileType] = "txt"
	a[1].Metadata[commonModels.MetaFileType] = "txt"
	_, err := store.Ingest(ctx, a)
	require.NoError(t, err)
	_, err = store.Ingest(ctx, docChunks("doc-b", "b.pdf", "z"))
	require.NoError(t, err)

	sources, err := store.ListUniqueSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "b.pdf", sources[0].Source)
	assert.Equal(t, "a.txt", sources[1].Source)
	assert.Equal(t, "doc-a", sources[1].DocumentId)
	assert.Equal(t, "txt", sources[1].FileType)
}

func TestDeleteAndClearAll(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	ids, err := store.Ingest(ctx, docChunks("doc-a", "a.txt", "x", "y", "z"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ids[:1]))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, store.ClearAll(ctx))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestResolveLatestScope_BackendFailure(t *testing.T) {
	store, spy := newStore()
	spy.OnNewestFirst = func(ctx context.Context, limit int) ([]commonModels.Chunk, error) {
		return nil, errors.New("unreachable")
	}
	_, err := store.ResolveLatestScope(context.Background())
	assert.ErrorIs(t, err, ragErrors.ErrRetrieval)
}
