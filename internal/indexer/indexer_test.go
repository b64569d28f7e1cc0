package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchunk/internal/chunker"
	"docchunk/internal/contextual"
	"docchunk/internal/embedder"
	"docchunk/internal/storage"
	"docchunk/internal/vectorstore"
	"docchunk/pkg/types"
)

// fakeEmbedder returns deterministic vectors without a network call.
type fakeEmbedder struct {
	dim   int
	calls int32
	fail  bool
}

func (f *fakeEmbedder) embed(text string) []float32 {
	vec := make([]float32, f.dim)
	for i := 0; i < len(text) && i < f.dim; i++ {
		vec[i%f.dim] += float32(text[i]) / 255
	}
	return vec
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) (*embedder.Embedding, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail {
		return nil, fmt.Errorf("embedder down")
	}
	return &embedder.Embedding{Vector: f.embed(text), Dimension: f.dim, Provider: "fake", Model: "fake-model"}, nil
}

func (f *fakeEmbedder) GenerateBatch(_ context.Context, texts []string) ([]*embedder.Embedding, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail {
		return nil, fmt.Errorf("embedder down")
	}
	embs := make([]*embedder.Embedding, len(texts))
	for i, text := range texts {
		embs[i] = &embedder.Embedding{Vector: f.embed(text), Dimension: f.dim, Provider: "fake", Model: "fake-model"}
	}
	return embs, nil
}

func (f *fakeEmbedder) Dimension() int   { return f.dim }
func (f *fakeEmbedder) Provider() string { return "fake" }
func (f *fakeEmbedder) Model() string    { return "fake-model" }
func (f *fakeEmbedder) Close() error     { return nil }

type testPipeline struct {
	indexer *Indexer
	vectors *vectorstore.Memory
	catalog *storage.SQLiteStorage
	emb     *fakeEmbedder
}

func newTestPipeline(t *testing.T) *testPipeline {
	return newTestPipelineFor(t, types.SourceBook)
}

func newTestPipelineFor(t *testing.T, sourceType types.SourceType) *testPipeline {
	t.Helper()

	builder := contextual.New(contextual.DefaultConfig())
	chk, err := chunker.New(chunker.Config{
		ChunkSize:    100,
		ChunkOverlap: 10,
		MinChunkSize: 10,
		SourceType:   sourceType,
	}, builder)
	require.NoError(t, err)

	emb := &fakeEmbedder{dim: 8}
	vectors := vectorstore.NewMemory()

	catalog, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = catalog.Close() })

	return &testPipeline{
		indexer: New(chk, contextual.NewBatchProcessor(builder), emb, vectors, catalog, nil),
		vectors: vectors,
		catalog: catalog,
		emb:     emb,
	}
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func sampleDoc() string {
	var sb strings.Builder
	sb.WriteString("# Memory Forensics\n\n")
	sb.WriteString(strings.Repeat("Memory analysis reveals running processes. ", 20))
	sb.WriteString("\n\n## Process Listings\n\n")
	sb.WriteString(strings.Repeat("The process list is the first artifact to review. ", 20))
	return sb.String()
}

func TestIngestPaths_SingleDocument(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()
	path := writeDoc(t, dir, "forensics guide.md", sampleDoc())

	stats, err := p.indexer.IngestPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 1, stats.DocumentsIngested)
	assert.Zero(t, stats.DocumentsFailed)
	assert.Greater(t, stats.ChunksCreated, 0)
	assert.Equal(t, stats.ChunksCreated, stats.ChunksEmbedded)
	assert.Greater(t, stats.AverageQuality, 0.0)

	// Vectors landed in the store.
	count, err := p.vectors.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.ChunksCreated, count)

	// Catalog has the document and its chunks.
	doc, err := p.catalog.GetDocument(context.Background(), "forensics guide")
	require.NoError(t, err)
	assert.Equal(t, stats.ChunksCreated, doc.TotalChunks)

	chunks, err := p.catalog.ListChunksByDocument(context.Background(), "forensics guide")
	require.NoError(t, err)
	require.Len(t, chunks, stats.ChunksCreated)
	assert.NotEmpty(t, chunks[0].ContextualPrefix)

	embRecord, err := p.catalog.GetEmbedding(context.Background(), chunks[0].ChunkID)
	require.NoError(t, err)
	assert.Equal(t, "fake", embRecord.Provider)
	assert.Equal(t, 8, embRecord.Dimension)
}

func TestIngestPaths_SkipsUnchanged(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", sampleDoc())

	first, err := p.indexer.IngestPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, first.DocumentsIngested)

	second, err := p.indexer.IngestPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	assert.Zero(t, second.DocumentsIngested)
	assert.Equal(t, 1, second.DocumentsSkipped)

	forced, err := p.indexer.IngestPaths(context.Background(), []string{path}, &Config{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, forced.DocumentsIngested)
}

func TestIngestPaths_ReingestReplacesChunks(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", sampleDoc())

	_, err := p.indexer.IngestPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)

	// Shrink the document so it yields fewer chunks.
	writeDoc(t, dir, "doc.md", "# Memory Forensics\n\n"+strings.Repeat("Short now. ", 10))

	stats, err := p.indexer.IngestPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats.DocumentsIngested)

	chunks, err := p.catalog.ListChunksByDocument(context.Background(), "doc")
	require.NoError(t, err)
	assert.Len(t, chunks, stats.ChunksCreated, "stale chunks must not survive re-ingestion")
}

func TestIngestPaths_UnsupportedExtension(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()
	path := writeDoc(t, dir, "binary.pdf", "%PDF-1.4")

	stats, err := p.indexer.IngestPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DocumentsFailed)
	assert.Zero(t, stats.DocumentsIngested)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], ".pdf")
}

func TestIngestPaths_FailureDoesNotAbortRun(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()
	good := writeDoc(t, dir, "good.md", sampleDoc())
	missing := filepath.Join(dir, "missing.md")

	stats, err := p.indexer.IngestPaths(context.Background(), []string{good, missing}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DocumentsIngested)
	assert.Equal(t, 1, stats.DocumentsFailed)
}

func TestIngestPaths_EmbedderFailure(t *testing.T) {
	p := newTestPipeline(t)
	p.emb.fail = true
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", sampleDoc())

	stats, err := p.indexer.IngestPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DocumentsFailed)
	_, err = p.catalog.GetDocument(context.Background(), "doc")
	assert.ErrorIs(t, err, storage.ErrNotFound, "failed ingestion must not leave catalog entries")
}

func TestIngestPaths_SourceTypeApplied(t *testing.T) {
	p := newTestPipelineFor(t, types.SourceProcedure)
	dir := t.TempDir()
	path := writeDoc(t, dir, "runbook.md", sampleDoc())

	_, err := p.indexer.IngestPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)

	chunks, err := p.catalog.ListChunksByDocument(context.Background(), "runbook")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.Equal(t, string(types.SourceProcedure), chunk.SourceType)
		assert.Contains(t, chunk.ContextualPrefix, "Procedure: runbook",
			"prefix label must follow the configured source type")
	}
}

func TestSearch(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()
	path := writeDoc(t, dir, "guide.md", sampleDoc())

	_, err := p.indexer.IngestPaths(context.Background(), []string{path}, nil)
	require.NoError(t, err)

	results, err := p.indexer.Search(context.Background(), "process listings artifact", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 3)
	assert.NotEmpty(t, results[0].Chunk.Content)
}

func TestSearch_EmptyQuery(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.indexer.Search(context.Background(), "  ", 5)
	assert.Error(t, err)
}

func TestIngestPaths_EmbedBatching(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", sampleDoc())

	_, err := p.indexer.IngestPaths(context.Background(), []string{path}, &Config{EmbedBatchSize: 1})
	require.NoError(t, err)

	chunks, err := p.catalog.ListChunksByDocument(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, int32(len(chunks)), atomic.LoadInt32(&p.emb.calls),
		"batch size 1 means one call per chunk")
}
