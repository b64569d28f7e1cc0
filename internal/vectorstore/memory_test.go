package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchunk/pkg/types"
)

func point(id string, vector []float32) Point {
	return Point{ID: id, Vector: vector, Chunk: types.Chunk{ID: id, Content: "content " + id}}
}

func TestMemory_RequiresInit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.Upsert(ctx, []Point{point("a", []float32{1})})
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = m.Search(ctx, []float32{1}, 5)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestMemory_DimensionChecks(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	assert.Error(t, m.Init(ctx, 0))
	require.NoError(t, m.Init(ctx, 3))

	err := m.Upsert(ctx, []Point{point("a", []float32{1, 2})})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = m.Search(ctx, []float32{1, 2}, 5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMemory_SearchOrdersBySimilarity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Init(ctx, 2))

	require.NoError(t, m.Upsert(ctx, []Point{
		point("east", []float32{1, 0}),
		point("north", []float32{0, 1}),
		point("northeast", []float32{1, 1}),
	}))

	results, err := m.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "east", results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "northeast", results[1].Chunk.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemory_SearchTieBreaksByID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Init(ctx, 2))

	require.NoError(t, m.Upsert(ctx, []Point{
		point("bbb", []float32{2, 0}),
		point("aaa", []float32{1, 0}),
	}))

	// Cosine similarity ignores magnitude: both score 1.0.
	results, err := m.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "aaa", results[0].Chunk.ID)
	assert.Equal(t, "bbb", results[1].Chunk.ID)
}

func TestMemory_UpsertReplaces(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Init(ctx, 1))

	require.NoError(t, m.Upsert(ctx, []Point{point("a", []float32{1})}))
	require.NoError(t, m.Upsert(ctx, []Point{point("a", []float32{-1})}))

	count, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := m.Search(ctx, []float32{1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, -1.0, results[0].Score, 1e-6)
}

func TestMemory_ReinitSameDimensionKeepsPoints(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Init(ctx, 1))
	require.NoError(t, m.Upsert(ctx, []Point{point("a", []float32{1})}))

	require.NoError(t, m.Init(ctx, 1))
	count, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemory_InitNewDimensionClears(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Init(ctx, 1))
	require.NoError(t, m.Upsert(ctx, []Point{point("a", []float32{1})}))

	require.NoError(t, m.Init(ctx, 2))
	count, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
