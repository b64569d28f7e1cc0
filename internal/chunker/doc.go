// Package chunker splits extracted document text into bounded-size
// chunks suitable for embedding and retrieval, without severing code
// blocks, tables, or other protected structure.
//
// # Pipeline
//
// A document passes through five stages inside ChunkContent:
//
//  1. Protect: fenced code blocks and markdown tables are replaced with
//     unique placeholder tokens so later stages treat them as atomic.
//  2. Split: text is divided along a priority-ordered separator
//     hierarchy (H2 > H3 > H4 > code fence > paragraph > line > word),
//     falling back to finer separators only when a coarser one cannot
//     divide the text within the size budget. When every separator is
//     exhausted, a hard splitter cuts at exact character offsets.
//  3. Restore: placeholders are substituted back to their original text.
//  4. Annotate: header lines yield chapter/section/subsection metadata,
//     and a running tracker carries the enclosing chapter/section
//     forward into chunks that lack their own header.
//  5. Emit: each surviving segment becomes an immutable Chunk with a
//     stable ID, a contiguous index, a page estimate, and (when a
//     PrefixBuilder is configured) a contextual prefix.
//
// # Sizing
//
// Sizes are configured in approximate tokens and converted with the
// chars/4 heuristic. Segments shorter than the configured minimum are
// dropped. An emitted chunk can exceed the budget only when a restored
// protected block straddled the cut; protected blocks are atomic.
//
// # Usage
//
//	c, err := chunker.New(chunker.DefaultConfig(), prefixer)
//	if err != nil {
//	    return err
//	}
//	chunks, err := c.ChunkContent(content)
//
// Chunking is deterministic: identical input and configuration produce a
// byte-identical chunk sequence. The chunker holds no per-document state
// between calls, so distinct documents may be chunked concurrently by
// the same instance.
//
// ValidateChunk and ValidateBatch provide post-hoc quality scoring
// (truncation, unbalanced fences, split tables, control characters) as
// soft signals; they never fail the pipeline.
package chunker
