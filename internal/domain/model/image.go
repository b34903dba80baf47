package model

import "time"

// ImageCandidate is one image found for a keyword set.
type ImageCandidate struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Title     string `json:"title,omitempty"`
	Alt       string `json:"alt,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Source    string `json:"source,omitempty"`
}

// ImageBatch holds the candidates fetched for a keyword set, in ranking
// order. Slot assignment happens later, at placement time.
type ImageBatch struct {
	KeywordSetID string           `json:"keyword_set_id"`
	Keyword      string           `json:"keyword"`
	Images       []ImageCandidate `json:"images"`
	FetchedAt    time.Time        `json:"fetched_at"`
}
