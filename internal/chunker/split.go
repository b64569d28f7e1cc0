package chunker

import "strings"

// separators is the boundary hierarchy tried from most to least
// structurally significant. Splitting degrades from headers down to
// single spaces before the hard splitter takes over.
var separators = []string{
	"\n## ",   // H2 headers (chapter sections)
	"\n### ",  // H3 headers (subsections)
	"\n#### ", // H4 headers
	"\n```",   // code fence boundaries
	"\n\n",    // paragraph breaks
	"\n",      // line breaks
	" ",       // word boundaries (last resort)
}

// recursiveSplit splits text into segments of at most chunkSize
// characters using the separator hierarchy. Each call is a pure function
// of its arguments: when a separator does not occur in the text, the
// same text recurses with the remaining separators.
func recursiveSplit(text string, chunkSize, overlap int, seps []string) []string {
	if len(seps) == 0 {
		return hardSplit(text, chunkSize, overlap)
	}

	sep := seps[0]
	rest := seps[1:]

	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return recursiveSplit(text, chunkSize, overlap, rest)
	}

	var segments []string
	var current string

	// closeSegment emits the in-progress segment, recursing into finer
	// separators when it still exceeds the budget.
	closeSegment := func() {
		if current == "" {
			return
		}
		if len(current) > chunkSize {
			segments = append(segments, recursiveSplit(current, chunkSize, overlap, rest)...)
		} else {
			segments = append(segments, current)
		}
	}

	for i, part := range parts {
		// Re-prefix the separator that Split consumed, except on the
		// first piece.
		if i > 0 {
			part = sep + part
		}

		if len(current)+len(part) <= chunkSize {
			current += part
			continue
		}

		closeSegment()
		current = part

		// Seed the new segment with the previous finished segment's
		// trailing slice so context carries across the boundary.
		if len(segments) > 0 && overlap > 0 {
			prev := segments[len(segments)-1]
			tail := prev
			if len(prev) > overlap {
				tail = prev[len(prev)-overlap:]
			}
			current = tail + current
		}
	}

	closeSegment()

	return segments
}

// hardSplit cuts text at exact chunkSize boundaries when no separator
// applies. Cuts back off to the nearest preceding space when one exists
// strictly after the segment start, and consecutive pieces overlap by
// overlap characters.
func hardSplit(text string, chunkSize, overlap int) []string {
	var segments []string

	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end >= len(text) {
			segments = append(segments, text[start:])
			break
		}

		if idx := strings.LastIndex(text[start:end], " "); idx > 0 {
			end = start + idx
		}

		segments = append(segments, text[start:end])

		next := end - overlap
		if next <= start {
			// A short word-boundary cut must not stall the cursor.
			next = end
		}
		start = next
	}

	return segments
}
