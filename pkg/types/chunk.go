package types

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

// SourceType tags where a chunk's document came from. It selects the
// label used in contextual prefixes.
type SourceType string

const (
	SourceBook      SourceType = "book"
	SourceDoc       SourceType = "doc"
	SourceOrg       SourceType = "org"
	SourceProcedure SourceType = "procedure"
)

// Chunk is a bounded-size unit of document text ready for embedding and
// indexing. Chunks are created once by the chunking pipeline and treated
// as immutable afterwards; WithPrefix returns a modified copy.
type Chunk struct {
	// ID is unique within a run: slugified document title plus a
	// zero-padded sequence number.
	ID string

	// Content is the trimmed chunk text with protected blocks restored.
	Content string

	// ContextualPrefix is the descriptive header prepended before
	// embedding. May be empty until the contextual stage runs.
	ContextualPrefix string

	SourceType SourceType
	BookTitle  string

	// Chapter and Section carry the nearest enclosing headers; empty
	// when the document has none.
	Chapter string
	Section string

	// Page is a best-effort page estimate, 0 when unknown.
	Page int

	// Index is the zero-based emission order within the document.
	Index int
}

// WithPrefix returns a copy of the chunk with the contextual prefix set.
func (c Chunk) WithPrefix(prefix string) Chunk {
	c.ContextualPrefix = prefix
	return c
}

// EmbeddingText returns the text handed to the embedding backend:
// contextual prefix (when present) followed by content.
func (c Chunk) EmbeddingText() string {
	return c.ContextualPrefix + c.Content
}

// ContentHash returns the SHA-256 digest of the chunk content, used for
// deduplication and incremental re-ingest.
func (c Chunk) ContentHash() [32]byte {
	return sha256.Sum256([]byte(c.Content))
}

// TokenCount estimates tokens using the chars/4 heuristic.
func (c Chunk) TokenCount() int {
	return len(c.Content) / 4
}

// Validate checks chunk invariants.
func (c Chunk) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return errors.New("chunk content cannot be empty")
	}
	if c.ID == "" {
		return errors.New("chunk ID is required")
	}
	if c.Index < 0 {
		return fmt.Errorf("chunk index must be non-negative, got %d", c.Index)
	}
	if c.BookTitle == "" {
		return errors.New("chunk book title is required")
	}
	return nil
}

// ChunkID builds the stable identifier for the chunk at the given
// sequence position of a document.
func ChunkID(title string, index int) string {
	return fmt.Sprintf("%s_%04d", SlugifyTitle(title), index)
}

// SlugifyTitle lowercases a document title and replaces spaces with
// underscores for use in chunk identifiers.
func SlugifyTitle(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

// ChunkMetadata holds structure detected in a single chunk's text. It is
// transient: consumed by the running-context tracker and the emitted
// chunk's chapter/section fields, never persisted.
type ChunkMetadata struct {
	Chapter    string
	Section    string
	Subsection string
	Page       int

	HasCode    bool
	HasTable   bool
	HasCommand bool
}
