package chunker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchunk/pkg/types"
)

func chunkWith(content string) types.Chunk {
	return types.Chunk{
		ID:        "test_0000",
		Content:   content,
		BookTitle: "Test",
	}
}

func TestValidateChunk_CleanChunk(t *testing.T) {
	metrics := ValidateChunk(chunkWith("A complete and tidy sentence."))

	assert.True(t, metrics.IsCompleteSentence)
	assert.False(t, metrics.HasSplitCodeBlock)
	assert.False(t, metrics.HasSplitTable)
	assert.False(t, metrics.HasGarbageChars)
	assert.Empty(t, metrics.Issues)
	assert.InDelta(t, 1.0, metrics.Score, 1e-9)
}

func TestValidateChunk_CompleteSuffixes(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		complete bool
	}{
		{"period", "Ends with a period.", true},
		{"question", "Does it end?", true},
		{"colon", "A list follows:", true},
		{"table row", "| a | b |", true},
		{"trailing whitespace ignored", "Still complete.  \n", true},
		{"mid sentence", "This chunk just stops mid", false},
		{"comma", "clauses separated by a comma,", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := ValidateChunk(chunkWith(tt.content))
			assert.Equal(t, tt.complete, metrics.IsCompleteSentence)
		})
	}
}

func TestValidateChunk_SplitCodeBlock(t *testing.T) {
	// One fence is an odd count: the block continues in another chunk.
	metrics := ValidateChunk(chunkWith("Some intro text ```"))

	assert.True(t, metrics.HasSplitCodeBlock)
	assert.Contains(t, metrics.Issues, "Code block may be split")
	assert.InDelta(t, 0.7, metrics.Score, 1e-9)
}

func TestValidateChunk_SplitTable(t *testing.T) {
	// Starts with a table row but carries no header separator.
	metrics := ValidateChunk(chunkWith("| value | other value |"))

	assert.True(t, metrics.HasSplitTable)
	assert.InDelta(t, 0.8, metrics.Score, 1e-9)
}

func TestValidateChunk_IntactTableNotFlagged(t *testing.T) {
	metrics := ValidateChunk(chunkWith("| a | b |\n|---|---|\n| 1 | 2 |"))
	assert.False(t, metrics.HasSplitTable)
}

func TestValidateChunk_GarbageCharacters(t *testing.T) {
	metrics := ValidateChunk(chunkWith("Corrupted\x00 bytes inside."))

	assert.True(t, metrics.HasGarbageChars)
	assert.InDelta(t, 0.8, metrics.Score, 1e-9)
}

func TestValidateChunk_HighControlCharacters(t *testing.T) {
	// The upper control range is matched as code points, DEL through
	// U+009F included.
	tests := []struct {
		name    string
		content string
		garbage bool
	}{
		{"delete", "text with\u007f control.", true},
		{"c1 range", "text with\u009f control.", true},
		{"plain ascii", "no control characters at all.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.garbage, ValidateChunk(chunkWith(tt.content)).HasGarbageChars)
		})
	}
}

func TestValidateChunk_PenaltiesAccumulate(t *testing.T) {
	// Incomplete, odd fence, split table, garbage: 1.0 - 0.1 - 0.3 - 0.2 - 0.2
	metrics := ValidateChunk(chunkWith("| broken \x01 row ``` and then nothing"))

	assert.False(t, metrics.IsCompleteSentence)
	assert.True(t, metrics.HasSplitCodeBlock)
	assert.True(t, metrics.HasSplitTable)
	assert.True(t, metrics.HasGarbageChars)
	assert.InDelta(t, 0.2, metrics.Score, 1e-9)
	assert.Len(t, metrics.Issues, 4)
}

func TestValidateBatch_Empty(t *testing.T) {
	report := ValidateBatch(nil)

	assert.Equal(t, 0, report.TotalChunks)
	assert.Zero(t, report.AverageScore)
	assert.False(t, report.Passed)
}

func TestValidateBatch_MixedQuality(t *testing.T) {
	chunks := []types.Chunk{
		chunkWith("A perfectly fine chunk."),
		chunkWith("This one trails off mid"),
	}

	report := ValidateBatch(chunks)

	assert.Equal(t, 2, report.TotalChunks)
	assert.Equal(t, 1, report.ChunksWithIssues)
	assert.InDelta(t, 0.95, report.AverageScore, 1e-9)
	assert.InDelta(t, 50.0, report.IssueRate, 1e-9)
	assert.True(t, report.Passed)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, "test_0000", report.Issues[0].ChunkID)
}

func TestValidateBatch_FailsBelowThreshold(t *testing.T) {
	chunks := []types.Chunk{
		chunkWith("Unterminated fence ```"),
		chunkWith("Another unterminated fence ```"),
	}

	report := ValidateBatch(chunks)

	assert.InDelta(t, 0.7, report.AverageScore, 1e-9)
	assert.False(t, report.Passed)
}

func TestValidateBatch_CapsReportedIssues(t *testing.T) {
	var chunks []types.Chunk
	for i := 0; i < 25; i++ {
		c := chunkWith("trails off mid")
		c.ID = fmt.Sprintf("test_%04d", i)
		chunks = append(chunks, c)
	}

	report := ValidateBatch(chunks)

	assert.Equal(t, 25, report.ChunksWithIssues)
	assert.Len(t, report.Issues, maxReportedIssues)
}
