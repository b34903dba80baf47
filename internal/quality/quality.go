// Package quality runs the local, non-generative checks of the
// quality-check step: word counting over tag-stripped content and keyword
// coverage against fixed thresholds.
package quality

import (
	"regexp"
	"strings"

	"blogforge/internal/domain/model"

	"github.com/PuerkitoBio/goquery"
)

const (
	MinWords    = 1500
	TargetWords = 2000
)

// Analyze counts words across every draft field with markup stripped and
// checks how often each keyword appears. It never mutates the draft.
func Analyze(d *model.ArticleDraft, mainKeyword string, subsidiary []string) *model.QualityReport {
	parts := []string{
		d.TitleTag,
		d.H1,
		stripTags(d.Opening),
	}
	for _, s := range d.Sections {
		parts = append(parts, stripTags(s))
	}
	parts = append(parts, stripTags(d.CTA), stripTags(d.Conclusion))

	fullText := strings.Join(parts, " ")
	wordCount := len(strings.Fields(fullText))

	lower := strings.ToLower(fullText)
	usage := make(map[string]int)
	var missing []string
	for _, kw := range append([]string{mainKeyword}, subsidiary...) {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
		n := len(re.FindAllStringIndex(lower, -1))
		usage[kw] = n
		if n == 0 {
			missing = append(missing, kw)
		}
	}

	return &model.QualityReport{
		WordCount:       wordCount,
		MinWords:        MinWords,
		TargetWords:     TargetWords,
		MeetsMinimum:    wordCount >= MinWords,
		MeetsTarget:     wordCount >= TargetWords,
		KeywordUsage:    usage,
		MissingKeywords: missing,
	}
}

// NeedsEnhancement flags drafts severely under length or missing the main
// keyword entirely.
func NeedsEnhancement(r *model.QualityReport, mainKeyword string) bool {
	return r.WordCount < MinWords || r.KeywordUsage[mainKeyword] == 0
}

// SpliceKeywords works missing keywords into the conclusion. Each keyword is
// grafted onto the first occurrence of the pivot term; when the pivot is
// absent a closing sentence is appended instead.
func SpliceKeywords(conclusion string, missing []string, pivot string) string {
	for _, kw := range missing {
		if strings.Contains(strings.ToLower(conclusion), strings.ToLower(kw)) {
			continue
		}
		if pivot != "" && strings.Contains(conclusion, pivot) {
			conclusion = strings.Replace(conclusion, pivot, kw+" and the "+pivot, 1)
			continue
		}
		conclusion += "\n<p>Explore more about " + kw + " in our resources.</p>"
	}
	return conclusion
}

// stripTags reduces an HTML fragment to its text. Unparseable input falls
// back to a regex strip so counting never fails.
func stripTags(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return tagPattern.ReplaceAllString(fragment, "")
	}
	return doc.Text()
}

var tagPattern = regexp.MustCompile(`<.*?>`)
