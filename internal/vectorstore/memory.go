package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Memory is an in-memory vector store using brute-force cosine
// similarity. Useful for tests and small corpora.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]Point
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{points: make(map[string]Point)}
}

// Init sets the dimension. Re-initializing with the same dimension is a
// no-op; changing the dimension discards existing points.
func (m *Memory) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return ErrDimensionMismatch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dimension != dimension {
		m.dimension = dimension
		m.points = make(map[string]Point)
	}
	return nil
}

// Upsert stores points keyed by ID.
func (m *Memory) Upsert(_ context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dimension == 0 {
		return ErrNotInitialized
	}
	for _, p := range points {
		if len(p.Vector) != m.dimension {
			return ErrDimensionMismatch
		}
	}
	for _, p := range points {
		m.points[p.ID] = p
	}
	return nil
}

// Search scans all points and returns the top matches by cosine
// similarity.
func (m *Memory) Search(_ context.Context, vector []float32, limit int) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dimension == 0 {
		return nil, ErrNotInitialized
	}
	if len(vector) != m.dimension {
		return nil, ErrDimensionMismatch
	}
	if limit <= 0 {
		limit = 5
	}

	results := make([]SearchResult, 0, len(m.points))
	for _, p := range m.points {
		results = append(results, SearchResult{
			Chunk: p.Chunk,
			Score: cosineSimilarity(vector, p.Vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of stored points.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points), nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
