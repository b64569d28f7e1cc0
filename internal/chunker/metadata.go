package chunker

import (
	"regexp"
	"strings"

	"docchunk/pkg/types"
)

var (
	h1Pattern      = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	h2Pattern      = regexp.MustCompile(`(?m)^##[ \t]+(.+)$`)
	h3Pattern      = regexp.MustCompile(`(?m)^###[ \t]+(.+)$`)
	commandPattern = regexp.MustCompile(`(?i)vol\.py|vol\s+-f|volatility`)
)

// extractMetadata inspects a restored segment for header lines and
// content-type flags. Only the first header of each level counts.
func extractMetadata(segment string) types.ChunkMetadata {
	var meta types.ChunkMetadata

	if m := h1Pattern.FindStringSubmatch(segment); m != nil {
		meta.Chapter = strings.TrimSpace(m[1])
	}
	if m := h2Pattern.FindStringSubmatch(segment); m != nil {
		meta.Section = strings.TrimSpace(m[1])
	}
	if m := h3Pattern.FindStringSubmatch(segment); m != nil {
		meta.Subsection = strings.TrimSpace(m[1])
	}

	meta.HasCode = strings.Contains(segment, "```")
	meta.HasTable = strings.Contains(segment, "|---|") || strings.Contains(segment, "| --- |")
	meta.HasCommand = commandPattern.MatchString(segment)

	return meta
}

// runningContext carries the most recently observed chapter and section
// forward across segments in document order. It is reset per document.
type runningContext struct {
	chapter string
	section string
}

// update folds a segment's metadata into the running state and returns
// the chapter/section the segment's chunk should carry.
func (rc runningContext) update(meta types.ChunkMetadata) (runningContext, string, string) {
	if meta.Chapter != "" {
		rc.chapter = meta.Chapter
	}
	if meta.Section != "" {
		rc.section = meta.Section
	}

	chapter := rc.chapter
	if chapter == "" {
		chapter = meta.Chapter
	}
	section := rc.section
	if section == "" {
		section = meta.Section
	}
	return rc, chapter, section
}
