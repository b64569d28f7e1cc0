// Package vectorstore persists chunk embeddings in a vector index and
// answers similarity queries. The pipeline core never touches this
// package directly; the indexer upserts finished chunks here after
// embedding.
package vectorstore

import (
	"context"
	"errors"

	"docchunk/pkg/types"
)

var (
	// ErrDimensionMismatch is returned when a vector does not match the
	// store's configured dimension.
	ErrDimensionMismatch = errors.New("vectorstore: vector dimension mismatch")
	// ErrNotInitialized is returned when the store is used before Init.
	ErrNotInitialized = errors.New("vectorstore: store not initialized")
)

// Point is a single vector with its chunk payload.
type Point struct {
	ID     string
	Vector []float32
	Chunk  types.Chunk
}

// SearchResult pairs a matching chunk with its similarity score.
type SearchResult struct {
	Chunk types.Chunk
	Score float64
}

// Store is the vector index the indexer writes into.
type Store interface {
	// Init prepares the store (creating the collection if missing) for
	// vectors of the given dimension.
	Init(ctx context.Context, dimension int) error

	// Upsert writes points, replacing any with the same ID.
	Upsert(ctx context.Context, points []Point) error

	// Search returns the nearest chunks to the query vector.
	Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)

	// Count returns the number of stored points.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}
