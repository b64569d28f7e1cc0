package contextual

import "docchunk/pkg/types"

// Stats counts the outcome of batch preprocessing.
type Stats struct {
	TotalProcessed     int
	WithExistingPrefix int
	PrefixAdded        int
}

// BatchProcessor applies contextual prefixes across chunk batches and
// tracks simple counters for ingest reporting.
type BatchProcessor struct {
	builder *Builder
	stats   Stats
}

// NewBatchProcessor wraps a Builder for batch use.
func NewBatchProcessor(builder *Builder) *BatchProcessor {
	return &BatchProcessor{builder: builder}
}

// Process returns a new slice of chunks with prefixes applied. Chunks
// that already carry a prefix pass through unchanged.
func (p *BatchProcessor) Process(chunks []types.Chunk) []types.Chunk {
	processed := make([]types.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		hadPrefix := chunk.ContextualPrefix != ""
		processed = append(processed, p.builder.Apply(chunk))

		p.stats.TotalProcessed++
		if hadPrefix {
			p.stats.WithExistingPrefix++
		} else {
			p.stats.PrefixAdded++
		}
	}
	return processed
}

// EmbeddingTexts returns the embedding input for each chunk in order.
func (p *BatchProcessor) EmbeddingTexts(chunks []types.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = p.builder.EmbeddingText(chunk)
	}
	return texts
}

// Stats returns a copy of the processing counters.
func (p *BatchProcessor) Stats() Stats { return p.stats }

// ResetStats zeroes the processing counters.
func (p *BatchProcessor) ResetStats() { p.stats = Stats{} }
