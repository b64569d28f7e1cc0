// Package contextual prepends a short descriptive header to chunks
// before embedding, per the contextual-retrieval technique. The prefix
// carries document-level context (source, chapter, section, page) so
// embeddings of ambiguous passages still capture where they came from.
package contextual

import (
	"fmt"
	"strings"

	"docchunk/pkg/types"
)

// Config controls which fields appear in the prefix and how long it may
// grow.
type Config struct {
	IncludeSource  bool
	IncludeChapter bool
	IncludeSection bool
	IncludePage    bool

	// Separator is the line terminating the prefix before chunk content.
	Separator string

	// MaxContextLength bounds the assembled prefix in characters; longer
	// prefixes are truncated with a trailing ellipsis.
	MaxContextLength int
}

// DefaultConfig returns the standard prefix configuration.
func DefaultConfig() Config {
	return Config{
		IncludeSource:    true,
		IncludeChapter:   true,
		IncludeSection:   true,
		IncludePage:      false,
		Separator:        "---",
		MaxContextLength: 200,
	}
}

// sourceLabels maps a source-type tag to its prefix label.
var sourceLabels = map[types.SourceType]string{
	types.SourceBook:      "Source",
	types.SourceDoc:       "Document",
	types.SourceOrg:       "Organization Knowledge",
	types.SourceProcedure: "Procedure",
}

// Builder assembles contextual prefixes. The zero value is not usable;
// construct with New.
type Builder struct {
	cfg Config
}

// New creates a Builder with the given configuration.
func New(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// BuildPrefix assembles the prefix from the available fields in fixed
// order. Fields are included only when enabled and non-empty. When no
// field is available the prefix is the empty string.
func (b *Builder) BuildPrefix(source, chapter, section string, page int, sourceType types.SourceType) string {
	var parts []string

	if b.cfg.IncludeSource && source != "" {
		parts = append(parts, fmt.Sprintf("%s: %s", sourceLabel(sourceType), source))
	}
	if b.cfg.IncludeChapter && chapter != "" {
		parts = append(parts, fmt.Sprintf("Chapter: %s", chapter))
	}
	if b.cfg.IncludeSection && section != "" {
		parts = append(parts, fmt.Sprintf("Section: %s", section))
	}
	if b.cfg.IncludePage && page > 0 {
		parts = append(parts, fmt.Sprintf("Page: %d", page))
	}

	if len(parts) == 0 {
		return ""
	}

	prefix := strings.Join(parts, "\n")
	if limit := b.cfg.MaxContextLength; limit > 0 && len(prefix) > limit {
		// A limit too small to carry an ellipsis just cuts hard.
		if limit > 3 {
			prefix = prefix[:limit-3] + "..."
		} else {
			prefix = prefix[:limit]
		}
	}

	return prefix + "\n" + b.cfg.Separator + "\n"
}

func sourceLabel(sourceType types.SourceType) string {
	if label, ok := sourceLabels[sourceType]; ok {
		return label
	}
	return "Source"
}

// Apply returns a copy of the chunk with a contextual prefix computed
// from its own fields. A chunk that already carries a prefix is returned
// unchanged.
func (b *Builder) Apply(chunk types.Chunk) types.Chunk {
	if chunk.ContextualPrefix != "" {
		return chunk
	}
	prefix := b.BuildPrefix(chunk.BookTitle, chunk.Chapter, chunk.Section, chunk.Page, chunk.SourceType)
	return chunk.WithPrefix(prefix)
}

// EmbeddingText returns the literal text handed to the embedding step:
// the chunk's prefix followed by its content. When the chunk was created
// without an explicit prefix, one is computed on demand from its fields
// rather than persisted twice.
func (b *Builder) EmbeddingText(chunk types.Chunk) string {
	prefix := chunk.ContextualPrefix
	if prefix == "" {
		prefix = b.BuildPrefix(chunk.BookTitle, chunk.Chapter, chunk.Section, chunk.Page, chunk.SourceType)
	}
	return prefix + chunk.Content
}
