package memoryDB

import (
	"context"
	"testing"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id string, v ...float32) commonModels.Chunk {
	return commonModels.Chunk{
		Id:        id,
		Content:   "content " + id,
		Metadata:  commonModels.Metadata{commonModels.MetaSource: id + ".txt"},
		Embedding: v,
	}
}

func TestNearestOrdersByCosine(t *testing.T) {
	ctx := context.Background()
	s := NewStorage(2)
	require.NoError(t, s.Insert(ctx, []commonModels.Chunk{
		row("far", 0, 1),
		row("near", 1, 0.1),
		row("mid", 1, 1),
	}))

	res, err := s.Nearest(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "near", res[0].Chunk.Id)
	assert.Equal(t, "mid", res[1].Chunk.Id)
	assert.Greater(t, res[0].Score, res[1].Score)
	assert.Nil(t, res[0].Chunk.Embedding)
}

func TestInsertRejectsWrongDimension(t *testing.T) {
	s := NewStorage(3)
	err := s.Insert(context.Background(), []commonModels.Chunk{row("a", 1, 2)})
	require.Error(t, err)
	n, _ := s.Count(context.Background())
	assert.Zero(t, n)
}

func TestNewestFirstAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStorage(1)
	require.NoError(t, s.Insert(ctx, []commonModels.Chunk{row("a", 1), row("b", 1)}))
	require.NoError(t, s.Insert(ctx, []commonModels.Chunk{row("c", 1)}))

	newest, err := s.NewestFirst(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, "c", newest[0].Id)

	all, err := s.NewestFirst(ctx, 0, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].Id, all[1].Id, all[2].Id})
	assert.NotNil(t, all[0].Embedding)

	require.NoError(t, s.Delete(ctx, []string{"b"}))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, s.DeleteAll(ctx))
	n, _ = s.Count(ctx)
	assert.Zero(t, n)
}

func TestEmptyStore(t *testing.T) {
	res, err := NewStorage(2).Nearest(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}
