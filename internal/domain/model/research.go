package model

import "time"

// ResearchSnippet is one search result captured during research scraping.
type ResearchSnippet struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet"`
	Source  string `json:"source,omitempty"`
}

// ResearchData is the scraped context used to ground content generation for
// one keyword set.
type ResearchData struct {
	KeywordSetID   string            `json:"keyword_set_id"`
	Snippets       []ResearchSnippet `json:"snippets"`
	ProductContext string            `json:"product_context,omitempty"`
	ScrapedAt      time.Time         `json:"scraped_at"`
}

// ContextSlice returns up to n snippets starting at offset, for per-section
// context assignment.
func (r *ResearchData) ContextSlice(offset, n int) []ResearchSnippet {
	if r == nil || offset >= len(r.Snippets) {
		return nil
	}
	end := offset + n
	if end > len(r.Snippets) {
		end = len(r.Snippets)
	}
	return r.Snippets[offset:end]
}
