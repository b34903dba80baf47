//go:build !integration

package quality

import (
	"strings"
	"testing"

	"blogforge/internal/domain/model"
)

func TestAnalyze(t *testing.T) {
	draft := &model.ArticleDraft{
		TitleTag: "Choosing a MIG Welder",
		H1:       "How to Choose a MIG Welder",
		Opening:  "<p>Picking the right MIG welder matters.</p>",
		Sections: []string{
			"<p>" + strings.Repeat("word ", 800) + "mig welder basics</p>",
			"<p>" + strings.Repeat("word ", 800) + "wire feed speed</p>",
		},
		CTA:        "<p>Talk to us about duty cycle today.</p>",
		Conclusion: "<p>A good mig welder lasts decades.</p>",
	}

	r := Analyze(draft, "mig welder", []string{"wire feed speed", "duty cycle", "flux core"})

	t.Run("counts words with tags stripped", func(t *testing.T) {
		if !r.MeetsMinimum {
			t.Errorf("word count %d should meet minimum %d", r.WordCount, r.MinWords)
		}
	})

	t.Run("keyword usage is word-boundary aware", func(t *testing.T) {
		if r.KeywordUsage["mig welder"] < 2 {
			t.Errorf("main keyword usage = %d, want >= 2", r.KeywordUsage["mig welder"])
		}
		if r.KeywordUsage["flux core"] != 0 {
			t.Errorf("absent keyword counted %d times", r.KeywordUsage["flux core"])
		}
	})

	t.Run("missing keywords listed", func(t *testing.T) {
		if len(r.MissingKeywords) != 1 || r.MissingKeywords[0] != "flux core" {
			t.Errorf("missing = %v, want [flux core]", r.MissingKeywords)
		}
	})
}

func TestNeedsEnhancement(t *testing.T) {
	t.Run("short draft needs it", func(t *testing.T) {
		r := &model.QualityReport{WordCount: 900, KeywordUsage: map[string]int{"kw": 3}}
		if !NeedsEnhancement(r, "kw") {
			t.Error("short draft must need enhancement")
		}
	})
	t.Run("missing main keyword needs it", func(t *testing.T) {
		r := &model.QualityReport{WordCount: 2500, KeywordUsage: map[string]int{"kw": 0}}
		if !NeedsEnhancement(r, "kw") {
			t.Error("zero main-keyword usage must need enhancement")
		}
	})
	t.Run("long covered draft does not", func(t *testing.T) {
		r := &model.QualityReport{WordCount: 2500, KeywordUsage: map[string]int{"kw": 4}}
		if NeedsEnhancement(r, "kw") {
			t.Error("healthy draft must not need enhancement")
		}
	})
}

func TestSpliceKeywords(t *testing.T) {
	t.Run("grafts onto pivot", func(t *testing.T) {
		got := SpliceKeywords("<p>The welding industry keeps evolving.</p>", []string{"plasma cutter"}, "welding industry")
		if !strings.Contains(got, "plasma cutter and the welding industry") {
			t.Errorf("pivot splice missing: %s", got)
		}
	})
	t.Run("appends when pivot absent", func(t *testing.T) {
		got := SpliceKeywords("<p>Done.</p>", []string{"plasma cutter"}, "nothing here")
		if !strings.Contains(got, "plasma cutter") {
			t.Errorf("keyword not appended: %s", got)
		}
	})
	t.Run("already present keyword untouched", func(t *testing.T) {
		in := "<p>Plasma cutter tips.</p>"
		if got := SpliceKeywords(in, []string{"plasma cutter"}, "x"); got != in {
			t.Errorf("conclusion changed: %s", got)
		}
	})
}
