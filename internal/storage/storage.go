package storage

import (
	"context"
	"errors"
	"time"

	"docchunk/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// Storage is the local catalog of ingested documents and their chunks.
// It backs incremental re-ingest (content-hash skip) and ingest
// bookkeeping; the vector index itself lives in the vectorstore package.
type Storage interface {
	// Document operations
	UpsertDocument(ctx context.Context, doc *DocumentRecord) error
	GetDocument(ctx context.Context, title string) (*DocumentRecord, error)
	ListDocuments(ctx context.Context) ([]*DocumentRecord, error)
	DeleteDocument(ctx context.Context, title string) error

	// Chunk operations
	UpsertChunk(ctx context.Context, chunk *ChunkRecord) error
	GetChunk(ctx context.Context, chunkID string) (*ChunkRecord, error)
	ListChunksByDocument(ctx context.Context, title string) ([]*ChunkRecord, error)
	DeleteChunksByDocument(ctx context.Context, title string) error

	// Embedding bookkeeping
	UpsertEmbedding(ctx context.Context, emb *EmbeddingRecord) error
	GetEmbedding(ctx context.Context, chunkID string) (*EmbeddingRecord, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// DocumentRecord tracks an ingested document
type DocumentRecord struct {
	ID          int64
	Title       string
	FilePath    string
	TotalPages  int
	ContentHash [32]byte
	TotalChunks int
	IngestedAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChunkRecord is the persisted form of a chunk
type ChunkRecord struct {
	ID               int64
	ChunkID          string
	DocumentTitle    string
	Content          string
	ContextualPrefix string
	SourceType       string
	Chapter          string
	Section          string
	Page             int
	ChunkIndex       int
	ContentHash      [32]byte
	QualityScore     float64
	CreatedAt        time.Time
}

// EmbeddingRecord tracks which chunks have been embedded and with what
type EmbeddingRecord struct {
	ID        int64
	ChunkID   string
	Provider  string
	Model     string
	Dimension int
	CreatedAt time.Time
}

// FromChunk converts a pipeline chunk into its persisted form
func FromChunk(chunk types.Chunk, qualityScore float64) *ChunkRecord {
	return &ChunkRecord{
		ChunkID:          chunk.ID,
		DocumentTitle:    chunk.BookTitle,
		Content:          chunk.Content,
		ContextualPrefix: chunk.ContextualPrefix,
		SourceType:       string(chunk.SourceType),
		Chapter:          chunk.Chapter,
		Section:          chunk.Section,
		Page:             chunk.Page,
		ChunkIndex:       chunk.Index,
		ContentHash:      chunk.ContentHash(),
		QualityScore:     qualityScore,
	}
}

// ToChunk converts a persisted record back to a pipeline chunk
func (r *ChunkRecord) ToChunk() types.Chunk {
	return types.Chunk{
		ID:               r.ChunkID,
		Content:          r.Content,
		ContextualPrefix: r.ContextualPrefix,
		SourceType:       types.SourceType(r.SourceType),
		BookTitle:        r.DocumentTitle,
		Chapter:          r.Chapter,
		Section:          r.Section,
		Page:             r.Page,
		Index:            r.ChunkIndex,
	}
}
