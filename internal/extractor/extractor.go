// Package extractor produces ExtractedContent from source files. The
// chunking pipeline consumes extraction output; it never reads files
// itself. Only plain markdown/text extraction lives here — richer
// formats (PDF) are expected to arrive pre-converted.
package extractor

import "docchunk/pkg/types"

// Extractor converts a source file into extracted content with document
// metadata and page position hints.
type Extractor interface {
	// Extract reads the file at path and returns its content.
	Extract(path string) (*types.ExtractedContent, error)

	// Name identifies the extractor for logging.
	Name() string
}
