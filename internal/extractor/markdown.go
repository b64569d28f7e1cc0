package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"docchunk/pkg/types"
)

const (
	// charsPerPage approximates page boundaries when the source format
	// carries no page information.
	charsPerPage = 3000

	// maxChapterTitle filters out header lines too long to be real
	// chapter titles.
	maxChapterTitle = 100

	// maxChapters bounds the detected chapter list.
	maxChapters = 50
)

var chapterPattern = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)

// Markdown extracts content from markdown or plain-text files. The
// document title is taken from the file stem, page markers are estimated
// from character counts, and chapter titles are detected from level-1
// headers.
type Markdown struct{}

// NewMarkdown creates a markdown file extractor.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Name implements Extractor.
func (m *Markdown) Name() string { return "markdown" }

// Extract reads the file and builds ExtractedContent.
func (m *Markdown) Extract(path string) (*types.ExtractedContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extractor: read %s: %w", path, err)
	}

	content := string(data)
	markers := estimatePageMarkers(content)
	chapters := detectChapters(content)

	doc := types.Document{
		Title:      titleFromPath(path),
		FilePath:   path,
		TotalPages: len(markers),
		Chapters:   chapters,
	}

	return &types.ExtractedContent{
		Document:    doc,
		Markdown:    content,
		PageMarkers: markers,
	}, nil
}

// estimatePageMarkers assigns page start offsets at fixed character
// intervals. Best effort only: downstream page numbers are advisory.
func estimatePageMarkers(content string) map[int]int {
	markers := make(map[int]int)
	page := 1
	for pos := 0; pos < len(content); pos += charsPerPage {
		markers[page] = pos
		page++
	}
	return markers
}

// detectChapters collects level-1 header titles of plausible length.
func detectChapters(content string) []string {
	var chapters []string
	for _, m := range chapterPattern.FindAllStringSubmatch(content, -1) {
		title := strings.TrimSpace(m[1])
		if len(title) > 0 && len(title) < maxChapterTitle {
			chapters = append(chapters, title)
		}
		if len(chapters) == maxChapters {
			break
		}
	}
	return chapters
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
