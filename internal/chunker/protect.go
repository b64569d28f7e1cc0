package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	codeBlockPattern = regexp.MustCompile("(?s)```.*?```")
	tablePattern     = regexp.MustCompile(`(?m)(?:^\|[^\n]+\|\n)+`)
)

// blockMap maps a placeholder token back to the original protected span.
// It is scoped to a single document's chunking pass and discarded after
// restoration.
type blockMap map[string]string

// protect replaces spans that must never be split (fenced code blocks,
// markdown tables) with unique placeholder tokens. Code blocks are
// protected first so a block containing pipe-delimited text is not
// mistaken for a table.
func protect(text string) (string, blockMap) {
	blocks := make(blockMap)

	for i, match := range codeBlockPattern.FindAllString(text, -1) {
		placeholder := fmt.Sprintf("__CODE_BLOCK_%d__", i)
		blocks[placeholder] = match
		text = strings.Replace(text, match, placeholder, 1)
	}

	for i, match := range tablePattern.FindAllString(text, -1) {
		placeholder := fmt.Sprintf("__TABLE_%d__", i)
		blocks[placeholder] = match
		text = strings.Replace(text, match, placeholder, 1)
	}

	return text, blocks
}

// restore substitutes every placeholder occurrence back to its original
// text. A segment may contain zero, one, or several placeholders.
func restore(text string, blocks blockMap) string {
	for placeholder, original := range blocks {
		text = strings.ReplaceAll(text, placeholder, original)
	}
	return text
}
