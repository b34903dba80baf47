package model

import "time"

// Generation steps, executed strictly in order. Finalize is the only step
// that destroys the session.
const (
	StepTitleTag = iota + 1
	StepH1Heading
	StepOpeningParagraph
	StepSubheadings
	StepContentSections
	StepCTA
	StepConclusion
	StepQualityCheck
	StepFinalize

	StepCount = StepFinalize
)

var stepNames = [...]string{
	StepTitleTag:         "title_tag",
	StepH1Heading:        "h1_heading",
	StepOpeningParagraph: "opening_paragraph",
	StepSubheadings:      "subheadings",
	StepContentSections:  "content_sections",
	StepCTA:              "cta",
	StepConclusion:       "conclusion",
	StepQualityCheck:     "quality_check",
	StepFinalize:         "finalize",
}

// StepName returns the wire name of a step number, or "" when out of range.
func StepName(n int) string {
	if n < StepTitleTag || n > StepFinalize {
		return ""
	}
	return stepNames[n]
}

// StepNumber resolves a wire name back to its position, 0 when unknown.
func StepNumber(name string) int {
	for i := StepTitleTag; i <= StepFinalize; i++ {
		if stepNames[i] == name {
			return i
		}
	}
	return 0
}

// ArticleDraft accumulates the intermediate outputs of a generation session.
type ArticleDraft struct {
	TitleTag     string         `json:"title_tag,omitempty"`
	H1           string         `json:"h1,omitempty"`
	Opening      string         `json:"opening,omitempty"`
	Subheadings  []string       `json:"subheadings,omitempty"`
	Sections     []string       `json:"sections,omitempty"`
	CTA          string         `json:"cta,omitempty"`
	Conclusion   string         `json:"conclusion,omitempty"`
	Quality      *QualityReport `json:"quality,omitempty"`
	EnhancedHTML string         `json:"enhanced_html,omitempty"`
}

// GenerationSession is the TTL-bounded working state of one article being
// generated step by step. CurrentStep is the next step to execute (1-based);
// it also serves as the compare-and-set cursor on store writes.
type GenerationSession struct {
	KeywordSetID string       `json:"keyword_set_id"`
	CurrentStep  int          `json:"current_step"`
	Draft        ArticleDraft `json:"draft"`
	StartedAt    time.Time    `json:"started_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

func NewGenerationSession(keywordSetID string, ttl time.Duration) *GenerationSession {
	now := time.Now()
	return &GenerationSession{
		KeywordSetID: keywordSetID,
		CurrentStep:  StepTitleTag,
		StartedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

func (s *GenerationSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
