package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "windows_internals_0000", ChunkID("Windows Internals", 0))
	assert.Equal(t, "windows_internals_0042", ChunkID("Windows Internals", 42))
	assert.Equal(t, "art_of_memory_forensics_1234", ChunkID("Art of Memory Forensics", 1234))
}

func TestSlugifyTitle(t *testing.T) {
	assert.Equal(t, "windows_internals", SlugifyTitle("Windows Internals"))
	assert.Equal(t, "already_lower", SlugifyTitle("already_lower"))
	assert.Equal(t, "a__b", SlugifyTitle("A  B"))
}

func TestChunk_WithPrefix(t *testing.T) {
	original := Chunk{ID: "x_0000", Content: "body"}
	modified := original.WithPrefix("prefix\n---\n")

	assert.Equal(t, "prefix\n---\n", modified.ContextualPrefix)
	assert.Empty(t, original.ContextualPrefix)
}

func TestChunk_EmbeddingText(t *testing.T) {
	c := Chunk{Content: "body"}
	assert.Equal(t, "body", c.EmbeddingText())

	c.ContextualPrefix = "Source: X\n---\n"
	assert.Equal(t, "Source: X\n---\nbody", c.EmbeddingText())
}

func TestChunk_ContentHash(t *testing.T) {
	a := Chunk{Content: "same"}
	b := Chunk{Content: "same", ContextualPrefix: "different prefix"}
	c := Chunk{Content: "other"}

	assert.Equal(t, a.ContentHash(), b.ContentHash(), "hash covers content only")
	assert.NotEqual(t, a.ContentHash(), c.ContentHash())
}

func TestChunk_TokenCount(t *testing.T) {
	c := Chunk{Content: "12345678"}
	assert.Equal(t, 2, c.TokenCount())
}

func TestChunk_Validate(t *testing.T) {
	valid := Chunk{ID: "t_0000", Content: "text", BookTitle: "T", Index: 0}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Chunk)
	}{
		{"empty content", func(c *Chunk) { c.Content = "  " }},
		{"missing id", func(c *Chunk) { c.ID = "" }},
		{"negative index", func(c *Chunk) { c.Index = -1 }},
		{"missing title", func(c *Chunk) { c.BookTitle = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
