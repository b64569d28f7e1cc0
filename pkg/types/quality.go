package types

// QualityMetrics is the validator's per-chunk assessment. All issues are
// soft signals; a low score never fails the pipeline.
type QualityMetrics struct {
	IsCompleteSentence bool
	HasSplitCodeBlock  bool
	HasSplitTable      bool
	HasGarbageChars    bool

	// Score starts at 1.0 and loses a fixed weight per issue, floored
	// at 0.0.
	Score float64

	Issues []string
}

// ChunkIssue pairs a chunk with its detected problems for batch reports.
type ChunkIssue struct {
	ChunkID string
	Issues  []string
	Score   float64
}

// QualityReport summarizes validation over a batch of chunks.
type QualityReport struct {
	TotalChunks      int
	AverageScore     float64
	ChunksWithIssues int

	// IssueRate is the percentage of chunks with at least one issue.
	IssueRate float64

	// Issues lists the first problem chunks, capped for reporting.
	Issues []ChunkIssue

	Passed bool
}
