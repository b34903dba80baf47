//go:build !integration

// File: internal/usecase/session_uc_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/infra/memstore"
	"blogforge/internal/seo"
)

type sessionHarness struct {
	uc       *sessionUC
	store    *memstore.SessionStore
	keywords *memstore.KeywordSetRepo
	research *memstore.ResearchRepo
	articles *memstore.ArticleRepo
	gen      *fakeGenerator
	ks       *model.KeywordSet
	clock    time.Time
}

func newSessionHarness(t *testing.T) *sessionHarness {
	t.Helper()
	log := zerolog.Nop()
	h := &sessionHarness{
		store:    memstore.NewSessionStore(),
		keywords: memstore.NewKeywordSetRepo(),
		research: memstore.NewResearchRepo(),
		articles: memstore.NewArticleRepo(),
		gen:      &fakeGenerator{},
		clock:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	h.uc = NewSessionUseCase(
		h.store, h.keywords, h.research, h.articles, memstore.NewTxManager(), h.gen,
		"fake-model", 2*time.Hour,
		NewPromptVars("welding", "Acme Welding", "+1 555 0100", "https://acme.example.com/"),
		seo.ProductKnowledge{Company: "Acme Welding"},
		&log,
	)
	h.uc.now = func() time.Time { return h.clock }

	ctx := context.Background()
	h.ks = model.NewKeywordSet("ks-1", "mig welder", []string{"wire feed", "duty cycle", "shielding gas", "amperage"})
	if err := h.keywords.Save(ctx, nil, h.ks); err != nil {
		t.Fatalf("seed keyword set: %v", err)
	}
	if err := h.research.Save(ctx, nil, &model.ResearchData{KeywordSetID: h.ks.ID, Snippets: someSnippets()}); err != nil {
		t.Fatalf("seed research: %v", err)
	}
	return h
}

func (h *sessionHarness) advance(t *testing.T, step string) *StepResult {
	t.Helper()
	res, err := h.uc.Advance(context.Background(), h.ks.ID, step)
	if err != nil {
		t.Fatalf("advance %s: %v", step, err)
	}
	return res
}

func TestSessionStart(t *testing.T) {
	ctx := context.Background()

	t.Run("starts at step one", func(t *testing.T) {
		h := newSessionHarness(t)
		s, err := h.uc.Start(ctx, h.ks.ID)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if s.CurrentStep != model.StepTitleTag {
			t.Errorf("current step = %d, want %d", s.CurrentStep, model.StepTitleTag)
		}
	})

	t.Run("idempotent while unexpired", func(t *testing.T) {
		h := newSessionHarness(t)
		s1, _ := h.uc.Start(ctx, h.ks.ID)
		h.advance(t, "title_tag")
		s2, err := h.uc.Start(ctx, h.ks.ID)
		if err != nil {
			t.Fatalf("second start: %v", err)
		}
		if s2.CurrentStep != model.StepH1Heading {
			t.Errorf("second start lost progress: step %d", s2.CurrentStep)
		}
		if !s1.StartedAt.Equal(s2.StartedAt) {
			t.Error("second start replaced the session")
		}
	})

	t.Run("requires research data", func(t *testing.T) {
		h := newSessionHarness(t)
		ks2 := model.NewKeywordSet("ks-2", "tig welder", []string{"a", "b", "c", "d"})
		_ = h.keywords.Save(ctx, nil, ks2)
		_, err := h.uc.Start(ctx, ks2.ID)
		var pre *domain.PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("err = %v, want PreconditionError", err)
		}
		if pre.Missing != "research data" {
			t.Errorf("missing = %q", pre.Missing)
		}
	})
}

func TestSessionStepOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("h1 before title is a precondition failure naming the title", func(t *testing.T) {
		h := newSessionHarness(t)
		_, _ = h.uc.Start(ctx, h.ks.ID)

		_, err := h.uc.Advance(ctx, h.ks.ID, "h1_heading")
		var pre *domain.PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("err = %v, want PreconditionError", err)
		}
		if !strings.Contains(pre.Error(), "title") {
			t.Errorf("error should mention the title: %v", pre)
		}

		// draft untouched
		s, _ := h.store.Get(ctx, h.ks.ID)
		if s.Draft.H1 != "" || s.CurrentStep != model.StepTitleTag {
			t.Error("failed step mutated the session")
		}

		// then the legal order works
		h.advance(t, "title_tag")
		h.advance(t, "h1_heading")
	})

	t.Run("re-requesting a completed step conflicts", func(t *testing.T) {
		h := newSessionHarness(t)
		_, _ = h.uc.Start(ctx, h.ks.ID)
		h.advance(t, "title_tag")

		if _, err := h.uc.Advance(ctx, h.ks.ID, "title_tag"); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("unknown step rejected", func(t *testing.T) {
		h := newSessionHarness(t)
		_, _ = h.uc.Start(ctx, h.ks.ID)
		if _, err := h.uc.Advance(ctx, h.ks.ID, "outline"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("err = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		h := newSessionHarness(t)
		if _, err := h.uc.Advance(ctx, "nope", "title_tag"); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("err = %v, want ErrSessionNotFound", err)
		}
	})
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	h := newSessionHarness(t)
	_, _ = h.uc.Start(ctx, h.ks.ID)

	h.clock = h.clock.Add(2*time.Hour + time.Minute)

	if _, err := h.uc.Advance(ctx, h.ks.ID, "title_tag"); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	// expiry purged the session
	if _, err := h.uc.Get(ctx, h.ks.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound after purge", err)
	}
}

func TestSessionGeneratorFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	h := newSessionHarness(t)
	_, _ = h.uc.Start(ctx, h.ks.ID)

	h.gen.GenerateFn = func(ctx context.Context, model, prompt string) (string, error) {
		return "", errors.New("rate limited")
	}
	_, err := h.uc.Advance(ctx, h.ks.ID, "title_tag")
	var up *domain.UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if up.Stage != "content_generation" {
		t.Errorf("stage = %q", up.Stage)
	}

	// the failed step did not advance the cursor
	s, _ := h.store.Get(ctx, h.ks.ID)
	if s.CurrentStep != model.StepTitleTag {
		t.Errorf("cursor moved to %d after failure", s.CurrentStep)
	}
}

func allSteps() []string {
	out := make([]string, 0, model.StepCount)
	for n := model.StepTitleTag; n <= model.StepFinalize; n++ {
		out = append(out, model.StepName(n))
	}
	return out
}

func TestSessionFullRun(t *testing.T) {
	ctx := context.Background()
	h := newSessionHarness(t)
	_, _ = h.uc.Start(ctx, h.ks.ID)

	var final *StepResult
	for _, step := range allSteps() {
		final = h.advance(t, step)
	}

	if final.Article == nil {
		t.Fatal("finalize returned no article")
	}
	if final.Article.PlainHTML == "" {
		t.Error("plain rendition missing")
	}
	if final.Article.Quality == nil {
		t.Error("quality report missing")
	}
	if len(final.Article.Sections) != len(final.Article.Subheadings) {
		t.Errorf("sections %d != subheadings %d", len(final.Article.Sections), len(final.Article.Subheadings))
	}

	// article persisted and retrievable by keyword set
	if _, err := h.articles.FindByKeywordSet(ctx, nil, h.ks.ID); err != nil {
		t.Errorf("article not persisted: %v", err)
	}

	// keyword set flipped
	ks, _ := h.keywords.FindByID(ctx, nil, h.ks.ID)
	if ks.Status != model.StatusBlogGenerated {
		t.Errorf("keyword status = %s, want %s", ks.Status, model.StatusBlogGenerated)
	}

	// finalize destroyed the session
	if _, err := h.store.Get(ctx, h.ks.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("session still present after finalize: %v", err)
	}
}

func TestSessionFinalizeIncompleteDraft(t *testing.T) {
	ctx := context.Background()
	h := newSessionHarness(t)

	// a session parked at finalize with no conclusion
	s := model.NewGenerationSession(h.ks.ID, 2*time.Hour)
	s.ExpiresAt = h.clock.Add(2 * time.Hour)
	s.CurrentStep = model.StepFinalize
	s.Draft = model.ArticleDraft{
		TitleTag:    "T",
		H1:          "H",
		Opening:     "<p>o</p>",
		Subheadings: []string{"a"},
		Sections:    []string{"<p>s</p>"},
		CTA:         "<p>c</p>",
		Quality:     &model.QualityReport{WordCount: 1600},
	}
	_ = h.store.Put(ctx, s)

	_, err := h.uc.Advance(ctx, h.ks.ID, "finalize")
	var pre *domain.PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	if pre.Missing != "conclusion" {
		t.Errorf("missing = %q, want conclusion", pre.Missing)
	}

	// session and draft intact, no article written
	got, err := h.store.Get(ctx, h.ks.ID)
	if err != nil {
		t.Fatalf("session gone after failed finalize: %v", err)
	}
	if got.CurrentStep != model.StepFinalize || got.Draft.TitleTag != "T" {
		t.Error("failed finalize mutated the session")
	}
	if _, err := h.articles.FindByKeywordSet(ctx, nil, h.ks.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("article materialized despite failed finalize")
	}
}

func TestSessionQualityEnhancementRunsOnce(t *testing.T) {
	ctx := context.Background()
	h := newSessionHarness(t)

	// short sections force the enhancement path
	h.gen.GenerateFn = func(ctx context.Context, model, prompt string) (string, error) {
		if strings.Contains(prompt, "FAQ section") {
			return `<h3>Frequently Asked Questions</h3><p>short faq</p>`, nil
		}
		return cannedShort(prompt), nil
	}
	_, _ = h.uc.Start(ctx, h.ks.ID)
	for _, step := range allSteps()[:7] {
		h.advance(t, step)
	}

	res := h.advance(t, "quality_check")
	if res.Quality == nil {
		t.Fatal("no quality report")
	}
	if !res.Quality.Enhanced {
		t.Error("short draft should be marked enhanced")
	}

	s, _ := h.store.Get(ctx, h.ks.ID)
	if s.Draft.EnhancedHTML == "" {
		t.Error("faq block missing after enhancement")
	}
}

func cannedShort(prompt string) string {
	if strings.Contains(prompt, "H2 subheadings") {
		return "Choosing the Right Equipment for You\nKeeping Your Machine Alive Longer\nStaying Safe on the Shop Floor\nWhat Comes Next for the Trade"
	}
	return "<p>short text</p>"
}
