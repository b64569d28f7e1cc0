package types

// Document describes a source document (typically a technical book or manual).
type Document struct {
	Title      string
	FilePath   string
	TotalPages int
	Chapters   []string
}

// ExtractedContent is the output of the extraction stage: the document's
// full markdown-like text plus page position hints.
type ExtractedContent struct {
	Document Document

	// Markdown is the extracted text body. It is not required to be valid
	// markdown; the chunker only relies on headers, fences and table rows.
	Markdown string

	// PageMarkers maps a page number to the character offset at which that
	// page begins. Offsets increase monotonically by page number. The
	// mapping is advisory and used only for page estimation.
	PageMarkers map[int]int
}

// EstimatePage returns the page containing the given character offset,
// or 0 when no markers are available.
func (e *ExtractedContent) EstimatePage(offset int) int {
	if len(e.PageMarkers) == 0 {
		return 0
	}
	page := 1
	// Walk pages in order; the map is small (one entry per page).
	for p := 1; ; p++ {
		pos, ok := e.PageMarkers[p]
		if !ok {
			break
		}
		if offset >= pos {
			page = p
		} else {
			break
		}
	}
	return page
}
