package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnknownProvider   = errors.New("unknown embedding provider")
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrBatchTooLarge     = errors.New("batch size exceeds limit")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Embedding is one vector plus the provenance the catalog records
// alongside it.
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Hash      string // SHA-256 of the embedded text, cache key
}

// Embedder generates vector embeddings for prefixed chunk text. The
// ingest path uses GenerateBatch; query embedding uses GenerateEmbedding.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) (*Embedding, error)
	GenerateBatch(ctx context.Context, texts []string) ([]*Embedding, error)

	// Dimension returns the vector width this provider produces.
	Dimension() int

	Provider() string
	Model() string

	// Close releases any resources held by the embedder
	Close() error
}

// checkText rejects text no provider can embed.
func checkText(text string) error {
	if text == "" {
		return ErrEmptyText
	}
	return nil
}

// checkBatch rejects empty batches, empty elements, and batches over the
// provider request limit.
func checkBatch(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	if len(texts) > MaxBatchSize {
		return fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}

// defaultCacheSize bounds the embedding cache when no size is configured.
const defaultCacheSize = 10000

// Cache holds recent embeddings keyed by text hash, with LRU eviction.
// Repeated ingestion of unchanged chunks skips the provider round trip.
type Cache struct {
	entries *lru.Cache[string, *Embedding]
}

// NewCache creates an embedding cache holding at most maxLen entries.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = defaultCacheSize
	}
	entries, err := lru.New[string, *Embedding](maxLen)
	if err != nil {
		// Only reachable with a non-positive size, already excluded.
		entries, _ = lru.New[string, *Embedding](defaultCacheSize)
	}
	return &Cache{entries: entries}
}

// Get returns a copy of the cached embedding for the hash. The vector is
// copied so callers cannot mutate the cached value.
func (c *Cache) Get(hash string) (*Embedding, bool) {
	emb, ok := c.entries.Get(hash)
	if !ok {
		return nil, false
	}
	out := *emb
	out.Vector = append([]float32(nil), emb.Vector...)
	return &out, true
}

// Set stores an embedding, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Set(hash string, emb *Embedding) {
	c.entries.Add(hash, emb)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.entries.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.entries.Purge()
}

// ComputeHash computes the SHA-256 hash of text for caching
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
