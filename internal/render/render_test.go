//go:build !integration

package render

import (
	"strings"
	"testing"

	"blogforge/internal/domain/model"
)

func TestSimpleHTML(t *testing.T) {
	d := &model.ArticleDraft{
		TitleTag:    "Welding Helmets Guide",
		H1:          "The Complete Welding Helmet Guide",
		Opening:     "<p>Helmets protect your eyes.</p>",
		Subheadings: []string{"Lens Shades", "Auto Darkening", "Fit", "Care"},
		Sections: []string{
			"<p>shade content</p>",
			"<p>auto content</p>",
			"<p>fit content</p>",
			"<p>care content</p>",
		},
		CTA:        "<p>Get a quote.</p>",
		Conclusion: "<p>Choose wisely.</p>",
	}

	out := SimpleHTML(d)

	t.Run("placeholders at expected positions", func(t *testing.T) {
		if !strings.Contains(out, "[Featured Image]") {
			t.Error("featured placeholder missing")
		}
		// after every 2nd section except the last: sections 1..4 -> one token after section 2
		if !strings.Contains(out, "[Content Image 1]") {
			t.Error("content placeholder 1 missing")
		}
		if strings.Contains(out, "[Content Image 2]") {
			t.Error("no placeholder expected after the final section")
		}
	})

	t.Run("subheadings rendered once", func(t *testing.T) {
		if got := strings.Count(out, "<h2>Lens Shades</h2>"); got != 1 {
			t.Errorf("subheading rendered %d times", got)
		}
	})

	t.Run("sections in order", func(t *testing.T) {
		if strings.Index(out, "shade content") > strings.Index(out, "auto content") {
			t.Error("sections out of order")
		}
	})

	t.Run("cta and conclusion sections present", func(t *testing.T) {
		if !strings.Contains(out, `<section class="cta-section">`) {
			t.Error("cta section missing")
		}
		if !strings.Contains(out, "<h2>Conclusion</h2>") {
			t.Error("conclusion heading missing")
		}
	})
}

func TestSimpleHTMLStripsDuplicateHeadings(t *testing.T) {
	d := &model.ArticleDraft{
		TitleTag:    "T",
		H1:          "H",
		Subheadings: []string{"Fit"},
		Sections:    []string{"<h2>Fit</h2><p>body</p>"},
	}
	out := SimpleHTML(d)
	if got := strings.Count(out, "<h2>Fit</h2>"); got != 1 {
		t.Errorf("heading appears %d times, want 1", got)
	}
}

func TestCleanFragment(t *testing.T) {
	t.Run("code fences removed", func(t *testing.T) {
		got := CleanFragment("```html\n<p>hi</p>\n```")
		if strings.Contains(got, "```") {
			t.Errorf("fence left: %q", got)
		}
	})

	t.Run("plain paragraphs wrapped", func(t *testing.T) {
		got := CleanFragment("first thought\n\nsecond thought")
		if strings.Count(got, "<p>") != 2 {
			t.Errorf("want two paragraphs, got %q", got)
		}
	})

	t.Run("bullets become a list", func(t *testing.T) {
		got := CleanFragment("- one\n- two")
		if !strings.Contains(got, "<ul>") || strings.Count(got, "<li>") != 2 {
			t.Errorf("bullet list not built: %q", got)
		}
	})

	t.Run("numbered lines become ordered list", func(t *testing.T) {
		got := CleanFragment("1. one\n2. two")
		if !strings.Contains(got, "<ol>") {
			t.Errorf("ordered list not built: %q", got)
		}
	})

	t.Run("existing markup untouched", func(t *testing.T) {
		in := "<p>already html</p>"
		if got := CleanFragment(in); got != in {
			t.Errorf("markup rewritten: %q", got)
		}
	})
}
