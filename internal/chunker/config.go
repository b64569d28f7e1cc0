package chunker

import (
	"errors"
	"fmt"

	"docchunk/pkg/types"
)

// charsPerToken is the approximation used to convert token budgets to
// character budgets (4 chars ≈ 1 token).
const charsPerToken = 4

// Config controls chunk sizing. Sizes are expressed in approximate
// tokens and converted to characters internally.
type Config struct {
	// ChunkSize is the target chunk size in tokens.
	ChunkSize int

	// ChunkOverlap is the trailing slice of one chunk carried into the
	// next, in tokens. Must be strictly smaller than ChunkSize.
	ChunkOverlap int

	// MinChunkSize is the minimum viable chunk in tokens; smaller
	// candidates are dropped.
	MinChunkSize int

	// SourceType tags every emitted chunk and selects the contextual
	// prefix label. Empty means book.
	SourceType types.SourceType
}

// DefaultConfig returns the standard chunking configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    512,
		ChunkOverlap: 100,
		MinChunkSize: 100,
		SourceType:   types.SourceBook,
	}
}

// Validate rejects configurations that would misbehave mid-run.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("chunker: chunk size must be greater than zero")
	}
	if c.ChunkOverlap < 0 {
		return errors.New("chunker: chunk overlap cannot be negative")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunker: overlap %d must be smaller than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.MinChunkSize < 0 {
		return errors.New("chunker: minimum chunk size cannot be negative")
	}
	return nil
}

// ChunkSizeChars returns the chunk size budget in characters.
func (c Config) ChunkSizeChars() int { return c.ChunkSize * charsPerToken }

// ChunkOverlapChars returns the overlap in characters.
func (c Config) ChunkOverlapChars() int { return c.ChunkOverlap * charsPerToken }

// MinChunkSizeChars returns the minimum viable chunk length in characters.
func (c Config) MinChunkSizeChars() int { return c.MinChunkSize * charsPerToken }
