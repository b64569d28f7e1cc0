package chunker

import (
	"math"
	"regexp"
	"strings"

	"docchunk/pkg/types"
)

// Quality score deductions per detected issue.
const (
	truncationPenalty = 0.1
	splitCodePenalty  = 0.3
	splitTablePenalty = 0.2
	garbagePenalty    = 0.2

	// passScore is the minimum mean score for a batch to pass.
	passScore = 0.9

	// maxReportedIssues caps the issue listing in a batch report.
	maxReportedIssues = 20
)

// Raw literal: the \x escapes must reach regexp as escapes, not as raw
// bytes (0x80-0x9f are not valid UTF-8 on their own).
var garbagePattern = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\x9f]`)

// sentence-terminal suffixes; a chunk ending in a code fence or table
// row is also considered complete.
var completeSuffixes = []string{".", "!", "?", ":", "```", "|"}

// ValidateChunk checks a single chunk for truncation, unbalanced fences,
// split tables, and control characters. All findings are soft signals.
func ValidateChunk(chunk types.Chunk) types.QualityMetrics {
	metrics := types.QualityMetrics{
		IsCompleteSentence: true,
		Score:              1.0,
	}
	content := chunk.Content

	trimmed := strings.TrimRight(content, " \t\r\n")
	if trimmed != "" && !hasCompleteSuffix(trimmed) {
		metrics.IsCompleteSentence = false
		metrics.Issues = append(metrics.Issues, "Chunk may end mid-sentence")
	}

	if strings.Count(content, "```")%2 != 0 {
		metrics.HasSplitCodeBlock = true
		metrics.Issues = append(metrics.Issues, "Code block may be split")
	}

	if strings.HasPrefix(strings.TrimSpace(content), "|") && !strings.Contains(content, "|---|") {
		metrics.HasSplitTable = true
		metrics.Issues = append(metrics.Issues, "Table may be split")
	}

	if garbagePattern.MatchString(content) {
		metrics.HasGarbageChars = true
		metrics.Issues = append(metrics.Issues, "Contains garbage characters")
	}

	score := 1.0
	if !metrics.IsCompleteSentence {
		score -= truncationPenalty
	}
	if metrics.HasSplitCodeBlock {
		score -= splitCodePenalty
	}
	if metrics.HasSplitTable {
		score -= splitTablePenalty
	}
	if metrics.HasGarbageChars {
		score -= garbagePenalty
	}
	metrics.Score = math.Max(0.0, score)

	return metrics
}

func hasCompleteSuffix(content string) bool {
	for _, suffix := range completeSuffixes {
		if strings.HasSuffix(content, suffix) {
			return true
		}
	}
	return false
}

// ValidateBatch validates a slice of chunks and produces a quality
// report. Issues are reported, never raised: the report's Passed flag is
// advisory and gating is left to the caller.
func ValidateBatch(chunks []types.Chunk) types.QualityReport {
	report := types.QualityReport{TotalChunks: len(chunks)}

	var totalScore float64
	var issues []types.ChunkIssue

	for _, chunk := range chunks {
		metrics := ValidateChunk(chunk)
		totalScore += metrics.Score

		if len(metrics.Issues) > 0 {
			issues = append(issues, types.ChunkIssue{
				ChunkID: chunk.ID,
				Issues:  metrics.Issues,
				Score:   metrics.Score,
			})
		}
	}

	if len(chunks) > 0 {
		report.AverageScore = round(totalScore/float64(len(chunks)), 3)
		report.IssueRate = round(float64(len(issues))/float64(len(chunks))*100, 1)
	}
	report.ChunksWithIssues = len(issues)
	if len(issues) > maxReportedIssues {
		issues = issues[:maxReportedIssues]
	}
	report.Issues = issues
	report.Passed = report.AverageScore >= passScore

	return report
}

func round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
