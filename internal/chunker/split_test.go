package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHardSplit_ExactSegmentCount(t *testing.T) {
	// 1000 unbreakable characters, cut at 100 with 20 overlap: the
	// cursor advances 80 per cut, so 12 full segments plus the tail.
	text := strings.Repeat("x", 1000)
	segments := hardSplit(text, 100, 20)

	require.Len(t, segments, 13)
	for i, seg := range segments[:12] {
		assert.Len(t, seg, 100, "segment %d", i)
	}
	assert.Len(t, segments[12], 40)
}

func TestHardSplit_OverlapCarriesTail(t *testing.T) {
	text := strings.Repeat("x", 250)
	segments := hardSplit(text, 100, 20)

	require.Greater(t, len(segments), 1)
	for i := 1; i < len(segments); i++ {
		prev := segments[i-1]
		tail := prev[len(prev)-20:]
		assert.True(t, strings.HasPrefix(segments[i], tail),
			"segment %d should start with previous tail", i)
	}
}

func TestHardSplit_BacksOffToWordBoundary(t *testing.T) {
	// The cut at 20 would land inside "immediately"; it should back
	// off to the last space before it.
	text := "some words and then immediately more"
	segments := hardSplit(text, 20, 0)

	require.NotEmpty(t, segments)
	assert.Equal(t, "some words and then", segments[0])
}

func TestHardSplit_ShortText(t *testing.T) {
	segments := hardSplit("short", 100, 20)
	require.Len(t, segments, 1)
	assert.Equal(t, "short", segments[0])
}

func TestHardSplit_Terminates(t *testing.T) {
	// Overlap close to the chunk size must still make forward
	// progress at every step.
	text := strings.Repeat("y", 500)
	segments := hardSplit(text, 100, 99)
	assert.NotEmpty(t, segments)

	var total int
	for _, seg := range segments {
		total += len(seg)
	}
	assert.GreaterOrEqual(t, total, len(text))
}

func TestRecursiveSplit_PrefersParagraphBreaks(t *testing.T) {
	para1 := strings.Repeat("a", 90) + "."
	para2 := strings.Repeat("b", 90) + "."
	text := para1 + "\n\n" + para2

	segments := recursiveSplit(text, 100, 0, separators)

	require.Len(t, segments, 2)
	assert.Equal(t, para1, segments[0])
	assert.Equal(t, "\n\n"+para2, segments[1])
}

func TestRecursiveSplit_FallsThroughMissingSeparators(t *testing.T) {
	// No headers, paragraphs or newlines: only spaces apply.
	text := strings.Repeat("word ", 60)
	segments := recursiveSplit(text, 100, 0, separators)

	require.Greater(t, len(segments), 1)
	for i, seg := range segments {
		assert.LessOrEqual(t, len(seg), 100, "segment %d", i)
	}
}

func TestRecursiveSplit_SegmentsWithinBudget(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString("## Heading\n")
		sb.WriteString(strings.Repeat("content line.\n", 20))
		sb.WriteString("\n")
	}

	segments := recursiveSplit(sb.String(), 200, 0, separators)
	require.NotEmpty(t, segments)
	for i, seg := range segments {
		assert.LessOrEqual(t, len(seg), 200, "segment %d", i)
	}
}

func TestRecursiveSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Some sentence here. ", 100)
	first := recursiveSplit(text, 150, 30, separators)
	second := recursiveSplit(text, 150, 30, separators)
	assert.Equal(t, first, second)
}

func TestRecursiveSplit_SmallTextSingleSegment(t *testing.T) {
	text := "A single small paragraph."
	segments := recursiveSplit(text, 400, 100, separators)
	require.Len(t, segments, 1)
	assert.Equal(t, text, segments[0])
}
