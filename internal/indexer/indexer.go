package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docchunk/internal/chunker"
	"docchunk/internal/contextual"
	"docchunk/internal/embedder"
	"docchunk/internal/extractor"
	"docchunk/internal/storage"
	"docchunk/internal/vectorstore"
	"docchunk/pkg/types"
)

const (
	defaultWorkers        = 4
	defaultEmbedBatchSize = 32
)

// Indexer coordinates the ingestion pipeline: extract -> chunk -> prefix -> embed -> store
type Indexer struct {
	extractors map[string]extractor.Extractor
	chunker    *chunker.Chunker
	prefixer   *contextual.BatchProcessor
	embedder   embedder.Embedder
	vectors    vectorstore.Store
	catalog    storage.Storage
	logger     *log.Logger
}

// Config contains configuration for an ingestion run
type Config struct {
	Workers        int  // Number of documents processed concurrently (default: 4)
	EmbedBatchSize int  // Number of chunks per embedding request (default: 32)
	Force          bool // Re-ingest documents even when their content hash is unchanged
}

// Statistics summarizes an ingestion run
type Statistics struct {
	RunID             string
	DocumentsIngested int
	DocumentsSkipped  int
	DocumentsFailed   int
	ChunksCreated     int
	ChunksEmbedded    int
	AverageQuality    float64
	Duration          time.Duration
	ErrorMessages     []string
}

// New creates a new Indexer instance. prefixer may be nil, in which case
// chunks keep whatever prefix the chunker attached.
func New(chk *chunker.Chunker, prefixer *contextual.BatchProcessor, emb embedder.Embedder, vectors vectorstore.Store, catalog storage.Storage, logger *log.Logger) *Indexer {
	if logger == nil {
		logger = log.Default()
	}
	return &Indexer{
		extractors: map[string]extractor.Extractor{
			".md":       extractor.NewMarkdown(),
			".markdown": extractor.NewMarkdown(),
			".txt":      extractor.NewMarkdown(),
		},
		chunker:  chk,
		prefixer: prefixer,
		embedder: emb,
		vectors:  vectors,
		catalog:  catalog,
		logger:   logger,
	}
}

// IngestPaths ingests the given document files concurrently
func (idx *Indexer) IngestPaths(ctx context.Context, paths []string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Workers <= 0 {
		config.Workers = defaultWorkers
	}
	if config.EmbedBatchSize <= 0 {
		config.EmbedBatchSize = defaultEmbedBatchSize
	}

	startTime := time.Now()
	stats := &Statistics{
		RunID:         uuid.NewString(),
		ErrorMessages: make([]string, 0),
	}

	if err := idx.vectors.Init(ctx, idx.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	idx.logger.Info("starting ingestion run",
		"run_id", stats.RunID, "documents", len(paths), "workers", config.Workers)

	var (
		ingested, skipped, failed, created, embedded int32
		mu                                           sync.Mutex
		qualitySum                                   float64
		qualityCount                                 int
	)

	semaphore := make(chan struct{}, config.Workers)
	g, gctx := errgroup.WithContext(ctx)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			result, err := idx.ingestFile(gctx, path, config)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages,
					fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
				idx.logger.Error("ingestion failed", "path", path, "err", err)
				return nil // continue with remaining documents
			}
			if result.skipped {
				atomic.AddInt32(&skipped, 1)
				return nil
			}

			atomic.AddInt32(&ingested, 1)
			atomic.AddInt32(&created, int32(result.chunks))
			atomic.AddInt32(&embedded, int32(result.embedded))
			mu.Lock()
			qualitySum += result.avgQuality
			qualityCount++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.DocumentsIngested = int(ingested)
	stats.DocumentsSkipped = int(skipped)
	stats.DocumentsFailed = int(failed)
	stats.ChunksCreated = int(created)
	stats.ChunksEmbedded = int(embedded)
	if qualityCount > 0 {
		stats.AverageQuality = qualitySum / float64(qualityCount)
	}
	stats.Duration = time.Since(startTime)

	idx.logger.Info("ingestion run complete",
		"run_id", stats.RunID,
		"ingested", stats.DocumentsIngested,
		"skipped", stats.DocumentsSkipped,
		"failed", stats.DocumentsFailed,
		"chunks", stats.ChunksCreated,
		"duration", stats.Duration)

	return stats, nil
}

// fileResult carries per-document outcome back to the run aggregator
type fileResult struct {
	skipped    bool
	chunks     int
	embedded   int
	avgQuality float64
}

func (idx *Indexer) ingestFile(ctx context.Context, path string, config *Config) (*fileResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	ex, ok := idx.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}

	content, err := ex.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	contentHash := sha256.Sum256([]byte(content.Markdown))

	if !config.Force {
		existing, err := idx.catalog.GetDocument(ctx, content.Document.Title)
		if err == nil && existing.ContentHash == contentHash {
			idx.logger.Debug("document unchanged, skipping", "title", content.Document.Title)
			return &fileResult{skipped: true}, nil
		}
	}

	chunks, err := idx.chunker.ChunkContent(content)
	if err != nil {
		return nil, fmt.Errorf("chunking failed: %w", err)
	}
	if len(chunks) == 0 {
		idx.logger.Warn("document produced no chunks", "title", content.Document.Title)
		return &fileResult{skipped: true}, nil
	}

	if idx.prefixer != nil {
		chunks = idx.prefixer.Process(chunks)
	}

	report := chunker.ValidateBatch(chunks)
	if !report.Passed {
		idx.logger.Warn("chunk quality below threshold",
			"title", content.Document.Title,
			"avg_score", report.AverageScore,
			"issue_rate", report.IssueRate)
	}

	scores := make(map[string]float64, len(chunks))
	for _, chunk := range chunks {
		scores[chunk.ID] = chunker.ValidateChunk(chunk).Score
	}

	points, embedded, err := idx.embedChunks(ctx, chunks, config.EmbedBatchSize)
	if err != nil {
		return nil, err
	}

	if err := idx.vectors.Upsert(ctx, points); err != nil {
		return nil, fmt.Errorf("vector upsert failed: %w", err)
	}

	if err := idx.catalogDocument(ctx, content, contentHash, chunks, scores); err != nil {
		return nil, err
	}

	idx.logger.Info("document ingested",
		"title", content.Document.Title,
		"chunks", len(chunks),
		"avg_score", report.AverageScore)

	return &fileResult{
		chunks:     len(chunks),
		embedded:   embedded,
		avgQuality: report.AverageScore,
	}, nil
}

// embedChunks embeds all chunks in batches and pairs each with its vector
func (idx *Indexer) embedChunks(ctx context.Context, chunks []types.Chunk, batchSize int) ([]vectorstore.Point, int, error) {
	points := make([]vectorstore.Point, 0, len(chunks))
	embedded := 0

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.EmbeddingText()
		}

		embs, err := idx.embedder.GenerateBatch(ctx, texts)
		if err != nil {
			return nil, 0, fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(embs) != len(batch) {
			return nil, 0, fmt.Errorf("embedding count mismatch: got %d, want %d",
				len(embs), len(batch))
		}

		for i, chunk := range batch {
			points = append(points, vectorstore.Point{
				ID:     chunk.ID,
				Vector: embs[i].Vector,
				Chunk:  chunk,
			})
			embedded++
		}
	}

	return points, embedded, nil
}

// catalogDocument records the document, its chunks, and their embedding
// provenance in a single transaction. Old chunks for the document are
// replaced wholesale so re-ingestion never leaves stale rows behind.
func (idx *Indexer) catalogDocument(ctx context.Context, content *types.ExtractedContent,
	contentHash [32]byte, chunks []types.Chunk, scores map[string]float64) error {

	tx, err := idx.catalog.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	doc := &storage.DocumentRecord{
		Title:       content.Document.Title,
		FilePath:    content.Document.FilePath,
		TotalPages:  content.Document.TotalPages,
		ContentHash: contentHash,
		TotalChunks: len(chunks),
		IngestedAt:  time.Now(),
	}
	if err := tx.UpsertDocument(ctx, doc); err != nil {
		return err
	}

	if err := tx.DeleteChunksByDocument(ctx, doc.Title); err != nil {
		return err
	}

	for _, chunk := range chunks {
		record := storage.FromChunk(chunk, scores[chunk.ID])
		if err := tx.UpsertChunk(ctx, record); err != nil {
			return err
		}
		emb := &storage.EmbeddingRecord{
			ChunkID:   chunk.ID,
			Provider:  idx.embedder.Provider(),
			Model:     idx.embedder.Model(),
			Dimension: idx.embedder.Dimension(),
		}
		if err := tx.UpsertEmbedding(ctx, emb); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	committed = true
	return nil
}

// Search embeds the query and returns the nearest chunks from the vector store
func (idx *Indexer) Search(ctx context.Context, query string, limit int) ([]vectorstore.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	emb, err := idx.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return idx.vectors.Search(ctx, emb.Vector, limit)
}
