package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectRestore_RoundTrip(t *testing.T) {
	text := "Before.\n\n```go\nfunc main() {}\n```\n\n| a | b |\n| 1 | 2 |\n\nAfter."

	protected, blocks := protect(text)

	assert.NotContains(t, protected, "func main")
	assert.NotContains(t, protected, "| 1 | 2 |")
	assert.Contains(t, protected, "__CODE_BLOCK_0__")
	assert.Contains(t, protected, "__TABLE_0__")

	restored := restore(protected, blocks)
	assert.Equal(t, text, restored)
}

func TestProtect_CodeBlockBeforeTable(t *testing.T) {
	// Pipe-delimited rows inside a fence belong to the code block, not
	// to a table.
	text := "```\n| col | col |\n| 1 | 2 |\n```\n"

	protected, blocks := protect(text)

	assert.Contains(t, protected, "__CODE_BLOCK_0__")
	assert.NotContains(t, protected, "__TABLE_")
	assert.Equal(t, text, restore(protected, blocks))
}

func TestProtect_MultipleBlocks(t *testing.T) {
	text := "```\none\n```\ntext\n```\ntwo\n```\n"

	protected, blocks := protect(text)

	assert.Contains(t, protected, "__CODE_BLOCK_0__")
	assert.Contains(t, protected, "__CODE_BLOCK_1__")
	require.Len(t, blocks, 2)
	assert.Equal(t, text, restore(protected, blocks))
}

func TestProtect_NoProtectedSpans(t *testing.T) {
	text := "Just a plain paragraph with | a stray pipe."
	protected, blocks := protect(text)
	assert.Equal(t, text, protected)
	assert.Empty(t, blocks)
}

func TestProtect_UnclosedFenceLeftAlone(t *testing.T) {
	text := "```go\nno closing fence here\n"
	protected, blocks := protect(text)
	assert.Equal(t, text, protected)
	assert.Empty(t, blocks)
}

func TestChunkContent_CodeBlockNeverSplit(t *testing.T) {
	code := "```python\n" + strings.Repeat("print('x')\n", 30) + "```"
	var sb strings.Builder
	for i := 0; i < 5; i++ {
		sb.WriteString(strings.Repeat("Padding sentence. ", 15))
		sb.WriteString("\n\n")
	}
	sb.WriteString(code)
	sb.WriteString("\n\n")
	sb.WriteString(strings.Repeat("Trailing sentence. ", 15))

	c, err := New(Config{ChunkSize: 100, ChunkOverlap: 0, MinChunkSize: 10}, nil)
	require.NoError(t, err)

	chunks, err := c.ChunkContent(testContent("Protection Test", sb.String()))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		fences := strings.Count(chunk.Content, "```")
		assert.Equal(t, 0, fences%2, "chunk %s has unbalanced fences", chunk.ID)
	}

	var whole strings.Builder
	for _, chunk := range chunks {
		whole.WriteString(chunk.Content)
	}
	assert.Contains(t, whole.String(), "print('x')")
}
