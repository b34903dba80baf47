package model

import "time"

// QualityReport is the outcome of the quality-check step. Two reports may be
// produced per article: the initial pass and, when below target, one pass
// after enhancement.
type QualityReport struct {
	WordCount       int            `json:"word_count"`
	MinWords        int            `json:"min_words"`
	TargetWords     int            `json:"target_words"`
	MeetsMinimum    bool           `json:"meets_minimum"`
	MeetsTarget     bool           `json:"meets_target"`
	KeywordUsage    map[string]int `json:"keyword_usage"`
	MissingKeywords []string       `json:"missing_keywords,omitempty"`
	Enhanced        bool           `json:"enhanced"`
}

// ArticleMetadata is the SEO envelope produced by the metadata stage.
type ArticleMetadata struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	MetaDescription string   `json:"meta_description"`
	MetaKeywords    []string `json:"meta_keywords"`
	OGTitle         string   `json:"og_title"`
	OGDescription   string   `json:"og_description"`
	CanonicalURL    string   `json:"canonical_url"`
}

// Article is the durable result a finalized generation session materializes.
// The HTML renditions are filled progressively: Plain at finalize, WithImages
// after placement, PublishReady after the metadata stage.
type Article struct {
	ID           string
	KeywordSetID string

	TitleTag    string
	H1          string
	Opening     string
	Subheadings []string
	Sections    []string
	CTA         string
	Conclusion  string

	PlainHTML        string
	EnhancedHTML     string
	WithImagesHTML   string
	PublishReadyHTML string

	Metadata  *ArticleMetadata
	Quality   *QualityReport
	WordCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BestHTML picks the richest rendition available, in publish order.
func (a *Article) BestHTML() string {
	for _, h := range []string{a.PublishReadyHTML, a.WithImagesHTML, a.EnhancedHTML, a.PlainHTML} {
		if h != "" {
			return h
		}
	}
	return ""
}
