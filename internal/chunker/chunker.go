package chunker

import (
	"fmt"
	"strings"

	"docchunk/pkg/types"
)

// PrefixBuilder builds a chunk's contextual header. The contextual
// package provides the standard implementation; the chunker only needs
// this one method.
type PrefixBuilder interface {
	BuildPrefix(source, chapter, section string, page int, sourceType types.SourceType) string
}

// Chunker splits extracted document text into bounded-size chunks that
// respect semantic boundaries: code blocks, tables, headers and
// paragraphs are never severed mid-structure.
type Chunker struct {
	cfg      Config
	prefixer PrefixBuilder
}

// New creates a Chunker, rejecting invalid size/overlap configuration
// up front rather than mid-run. prefixer may be nil, in which case
// emitted chunks carry no contextual prefix.
func New(cfg Config, prefixer PrefixBuilder) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SourceType == "" {
		cfg.SourceType = types.SourceBook
	}
	return &Chunker{cfg: cfg, prefixer: prefixer}, nil
}

// Config returns the chunker's configuration.
func (c *Chunker) Config() Config { return c.cfg }

// ChunkContent splits extracted content into chunks. Processing is a
// pure, deterministic function of the content and configuration:
// re-running on identical input reproduces an identical chunk sequence.
// Empty or whitespace-only text yields zero chunks, not an error.
func (c *Chunker) ChunkContent(content *types.ExtractedContent) ([]types.Chunk, error) {
	if content == nil {
		return nil, fmt.Errorf("chunker: content is required")
	}
	if strings.TrimSpace(content.Document.Title) == "" {
		return nil, fmt.Errorf("chunker: document title is required")
	}

	text := content.Markdown
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	protected, blocks := protect(text)

	segments := recursiveSplit(
		protected,
		c.cfg.ChunkSizeChars(),
		c.cfg.ChunkOverlapChars(),
		separators,
	)

	doc := content.Document
	var chunks []types.Chunk
	var rc runningContext
	index := 0

	for _, segment := range segments {
		restored := restore(segment, blocks)

		if len(strings.TrimSpace(restored)) < c.cfg.MinChunkSizeChars() {
			continue
		}

		meta := extractMetadata(restored)

		var chapter, section string
		rc, chapter, section = rc.update(meta)

		page := estimatePage(text, restored, content)

		var prefix string
		if c.prefixer != nil {
			prefix = c.prefixer.BuildPrefix(doc.Title, chapter, section, page, c.cfg.SourceType)
		}

		chunks = append(chunks, types.Chunk{
			ID:               types.ChunkID(doc.Title, index),
			Content:          strings.TrimSpace(restored),
			ContextualPrefix: prefix,
			SourceType:       c.cfg.SourceType,
			BookTitle:        doc.Title,
			Chapter:          chapter,
			Section:          section,
			Page:             page,
			Index:            index,
		})
		index++
	}

	return chunks, nil
}

// estimatePage locates the chunk's approximate start offset in the
// original text and maps it through the page markers. Advisory only.
func estimatePage(text, restored string, content *types.ExtractedContent) int {
	if len(content.PageMarkers) == 0 {
		return 0
	}
	offset := 0
	if len(restored) > 100 {
		if pos := strings.Index(text, restored[:100]); pos >= 0 {
			offset = pos
		}
	}
	return content.EstimatePage(offset)
}
