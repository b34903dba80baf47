package model

import "time"

// KeywordSetStatus tracks a keyword set through the pipeline.
type KeywordSetStatus string

const (
	StatusCreated           KeywordSetStatus = "created"
	StatusScraping          KeywordSetStatus = "scraping"
	StatusScraped           KeywordSetStatus = "scraped"
	StatusScrapingFailed    KeywordSetStatus = "scraping_failed"
	StatusSearchingImages   KeywordSetStatus = "searching_images"
	StatusImagesFound       KeywordSetStatus = "images_found"
	StatusImageSearchFailed KeywordSetStatus = "image_search_failed"
	StatusBlogGenerated     KeywordSetStatus = "blog_generated"
	StatusImagesIntegrated  KeywordSetStatus = "images_integrated"
	StatusReadyToPublish    KeywordSetStatus = "ready_to_publish"
)

// KeywordSet is one main keyword plus its subsidiary keywords, the unit the
// whole pipeline operates on.
type KeywordSet struct {
	ID          string
	MainKeyword string
	Subsidiary  []string
	Status      KeywordSetStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewKeywordSet(id, main string, subsidiary []string) *KeywordSet {
	now := time.Now()
	return &KeywordSet{
		ID:          id,
		MainKeyword: main,
		Subsidiary:  subsidiary,
		Status:      StatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AllKeywords returns the main keyword followed by the subsidiary ones.
func (k *KeywordSet) AllKeywords() []string {
	out := make([]string, 0, len(k.Subsidiary)+1)
	out = append(out, k.MainKeyword)
	out = append(out, k.Subsidiary...)
	return out
}
