// Package types provides shared domain types for the docchunk pipeline.
//
// The central type is Chunk, a bounded unit of document text carrying the
// structural metadata (source, chapter, section, page) needed for citation
// and for building the contextual prefix that is embedded alongside the
// content:
//
//	chunk := types.Chunk{
//	    ID:        types.ChunkID("Windows Internals", 0),
//	    Content:   "The VAD tree tracks reserved ranges...",
//	    BookTitle: "Windows Internals",
//	    Chapter:   "Memory Management",
//	}
//
// Chunks are emitted by the chunker and treated as immutable afterwards.
// Stages that need to annotate a chunk (the contextual-prefix stage) work
// on copies:
//
//	enriched := chunk.WithPrefix(prefix)
//	text := enriched.EmbeddingText() // prefix + content
//
// ExtractedContent is the extraction stage's handoff: the raw markdown
// body plus advisory page markers used for page estimation. QualityMetrics
// and QualityReport carry the validator's soft signals; they never abort
// processing.
package types
