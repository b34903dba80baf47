// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
	"blogforge/internal/domain/ports/repository"
	"blogforge/internal/infra/metrics"
	"blogforge/internal/quality"
	"blogforge/internal/render"
	"blogforge/internal/seo"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// StepResult is what one advance call returns to the caller.
type StepResult struct {
	Step     string
	NextStep int
	Fragment string
	Quality  *model.QualityReport
	Article  *model.Article
}

type SessionUseCase interface {
	// Start opens a session for a keyword set with research present; an
	// existing unexpired session is returned as-is.
	Start(ctx context.Context, keywordSetID string) (*model.GenerationSession, error)

	// Advance executes the named step. Steps run strictly in order; the
	// machine never rewinds.
	Advance(ctx context.Context, keywordSetID, stepName string) (*StepResult, error)

	Get(ctx context.Context, keywordSetID string) (*model.GenerationSession, error)
}

type sessionUC struct {
	store    repository.SessionStore
	keywords repository.KeywordSetRepository
	research repository.ResearchRepository
	articles repository.ArticleRepository
	tx       repository.TransactionManager
	gen      adapter.ContentGenerator

	modelName string
	ttl       time.Duration
	vars      promptVars
	pk        seo.ProductKnowledge
	now       func() time.Time
	log       *zerolog.Logger
}

func NewSessionUseCase(
	store repository.SessionStore,
	keywords repository.KeywordSetRepository,
	research repository.ResearchRepository,
	articles repository.ArticleRepository,
	tx repository.TransactionManager,
	gen adapter.ContentGenerator,
	modelName string,
	ttl time.Duration,
	vars promptVars,
	pk seo.ProductKnowledge,
	logger *zerolog.Logger,
) *sessionUC {
	l := logger.With().Str("component", "session_uc").Logger()
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &sessionUC{
		store:     store,
		keywords:  keywords,
		research:  research,
		articles:  articles,
		tx:        tx,
		gen:       gen,
		modelName: modelName,
		ttl:       ttl,
		vars:      vars,
		pk:        pk,
		now:       time.Now,
		log:       &l,
	}
}

// NewPromptVars builds the shared prompt context from configuration.
func NewPromptVars(industry, company, phone, website string) promptVars {
	if industry == "" {
		industry = "general"
	}
	return promptVars{Industry: industry, Company: company, Phone: phone, Website: website}
}

func (u *sessionUC) Start(ctx context.Context, keywordSetID string) (*model.GenerationSession, error) {
	ks, err := u.keywords.FindByID(ctx, nil, keywordSetID)
	if err != nil {
		return nil, err
	}
	if _, err := u.research.FindByKeywordSet(ctx, nil, ks.ID); err != nil {
		return nil, &domain.PreconditionError{Step: "start", Missing: "research data"}
	}

	if s, err := u.store.Get(ctx, ks.ID); err == nil {
		if !s.Expired(u.now()) {
			return s, nil
		}
		_ = u.store.Delete(ctx, ks.ID)
		metrics.IncSessionOutcome("expired")
	}

	s := model.NewGenerationSession(ks.ID, u.ttl)
	s.StartedAt = u.now()
	s.ExpiresAt = s.StartedAt.Add(u.ttl)
	if err := u.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	u.log.Info().Str("keyword_set", ks.ID).Time("expires_at", s.ExpiresAt).Msg("generation session started")
	return s, nil
}

func (u *sessionUC) Get(ctx context.Context, keywordSetID string) (*model.GenerationSession, error) {
	s, err := u.store.Get(ctx, keywordSetID)
	if err != nil {
		return nil, err
	}
	if s.Expired(u.now()) {
		_ = u.store.Delete(ctx, keywordSetID)
		metrics.IncSessionOutcome("expired")
		return nil, domain.ErrSessionExpired
	}
	return s, nil
}

// stepOutput names what each step produces, for precondition messages.
var stepOutput = map[int]string{
	model.StepTitleTag:         "title",
	model.StepH1Heading:        "h1 heading",
	model.StepOpeningParagraph: "opening paragraph",
	model.StepSubheadings:      "subheadings",
	model.StepContentSections:  "content sections",
	model.StepCTA:              "call to action",
	model.StepConclusion:       "conclusion",
	model.StepQualityCheck:     "quality report",
}

func (u *sessionUC) Advance(ctx context.Context, keywordSetID, stepName string) (*StepResult, error) {
	n := model.StepNumber(stepName)
	if n == 0 {
		return nil, fmt.Errorf("%w: unknown step %q", domain.ErrInvalidArgument, stepName)
	}

	s, err := u.store.Get(ctx, keywordSetID)
	if err != nil {
		metrics.IncSessionStep(stepName, "error")
		return nil, err
	}
	if s.Expired(u.now()) {
		_ = u.store.Delete(ctx, keywordSetID)
		metrics.IncSessionStep(stepName, "expired")
		metrics.IncSessionOutcome("expired")
		return nil, domain.ErrSessionExpired
	}

	switch {
	case n < s.CurrentStep:
		// completed steps are never rewound
		metrics.IncSessionStep(stepName, "conflict")
		return nil, domain.ErrConflict
	case n > s.CurrentStep:
		metrics.IncSessionStep(stepName, "precondition")
		return nil, &domain.PreconditionError{Step: stepName, Missing: stepOutput[s.CurrentStep]}
	}

	ks, err := u.keywords.FindByID(ctx, nil, s.KeywordSetID)
	if err != nil {
		return nil, err
	}
	rd, err := u.research.FindByKeywordSet(ctx, nil, s.KeywordSetID)
	if err != nil {
		rd = &model.ResearchData{KeywordSetID: s.KeywordSetID}
	}

	if n == model.StepFinalize {
		return u.finalize(ctx, s, ks)
	}

	res, err := u.executeStep(ctx, n, s, ks, rd)
	if err != nil {
		metrics.IncSessionStep(stepName, "error")
		return nil, err
	}

	// The collaborator call above may have completed on an earlier attempt
	// that crashed before this write; the cursor compare-and-set makes the
	// step complete at most once.
	s.CurrentStep = n + 1
	if err := u.store.PutIfStep(ctx, s, n); err != nil {
		metrics.IncSessionStep(stepName, "conflict")
		return nil, err
	}
	metrics.IncSessionStep(stepName, "ok")
	res.Step = stepName
	res.NextStep = s.CurrentStep
	return res, nil
}

func (u *sessionUC) executeStep(ctx context.Context, n int, s *model.GenerationSession, ks *model.KeywordSet, rd *model.ResearchData) (*StepResult, error) {
	d := &s.Draft
	switch n {
	case model.StepTitleTag:
		title, err := u.generate(ctx, titlePrompt(ks.MainKeyword, ks.Subsidiary, u.vars))
		if err != nil {
			return nil, err
		}
		title = strings.Trim(strings.TrimSpace(title), `"'`)
		if !strings.Contains(strings.ToLower(title), strings.ToLower(ks.MainKeyword)) {
			title = truncateRunes(ks.MainKeyword+": "+title, 60)
		}
		d.TitleTag = title
		return &StepResult{Fragment: title}, nil

	case model.StepH1Heading:
		h1, err := u.generate(ctx, h1Prompt(d.TitleTag, ks.MainKeyword, u.vars))
		if err != nil {
			return nil, err
		}
		d.H1 = strings.TrimSpace(h1)
		return &StepResult{Fragment: d.H1}, nil

	case model.StepOpeningParagraph:
		context := joinSnippets(rd.ContextSlice(0, 2), 100, 200)
		opening, err := u.generate(ctx, openingPrompt(d.TitleTag, ks.MainKeyword, context, u.vars))
		if err != nil {
			return nil, err
		}
		d.Opening = render.CleanFragment(opening)
		return &StepResult{Fragment: d.Opening}, nil

	case model.StepSubheadings:
		raw, err := u.generate(ctx, subheadingsPrompt(d.TitleTag, ks.MainKeyword, ks.Subsidiary, 4, u.vars))
		if err != nil {
			return nil, err
		}
		subs := parseSubheadings(raw, ks, 4)
		d.Subheadings = subs
		return &StepResult{Fragment: strings.Join(subs, "\n")}, nil

	case model.StepContentSections:
		sections := make([]string, 0, len(d.Subheadings))
		wordTarget := 300
		if len(d.Subheadings) == 4 {
			wordTarget = 350
		}
		for i, sub := range d.Subheadings {
			sectionCtx := joinSnippets(rd.ContextSlice(i*2, 2), 100, 200)
			kws := []string{ks.MainKeyword}
			if len(ks.Subsidiary) > 0 {
				kws = append(kws, ks.Subsidiary[i%len(ks.Subsidiary)])
			}
			body, err := u.generate(ctx, sectionPrompt(sub, sectionCtx, ks.MainKeyword, kws, wordTarget, u.vars))
			if err != nil {
				return nil, err
			}
			body = render.CleanFragment(render.StripHeadings(body))
			sections = append(sections, body)
		}
		d.Sections = seo.LinkSections(sections, u.pk)
		return &StepResult{Fragment: fmt.Sprintf("%d sections generated", len(sections))}, nil

	case model.StepCTA:
		cta, err := u.generate(ctx, ctaPrompt(ks.MainKeyword, u.vars))
		if err != nil {
			return nil, err
		}
		d.CTA = render.CleanFragment(cta)
		return &StepResult{Fragment: d.CTA}, nil

	case model.StepConclusion:
		conclusion, err := u.generate(ctx, conclusionPrompt(d.TitleTag, ks.MainKeyword, d.Subheadings, u.vars))
		if err != nil {
			return nil, err
		}
		d.Conclusion = render.CleanFragment(conclusion)
		return &StepResult{Fragment: d.Conclusion}, nil

	case model.StepQualityCheck:
		return u.qualityCheck(ctx, d, ks)
	}
	return nil, fmt.Errorf("%w: step %d has no executor", domain.ErrInvalidArgument, n)
}

// qualityCheck analyzes the draft and, when below threshold, runs exactly
// one enhancement pass: a generated FAQ block plus missing keywords spliced
// into the conclusion. Existing sections are never regenerated.
func (u *sessionUC) qualityCheck(ctx context.Context, d *model.ArticleDraft, ks *model.KeywordSet) (*StepResult, error) {
	report := quality.Analyze(d, ks.MainKeyword, ks.Subsidiary)
	if quality.NeedsEnhancement(report, ks.MainKeyword) {
		if report.WordCount < quality.MinWords {
			faq, err := u.generate(ctx, faqPrompt(ks.MainKeyword, ks.Subsidiary, u.vars))
			if err == nil {
				d.EnhancedHTML = render.CleanFragment(faq)
			} else {
				u.log.Warn().Err(err).Msg("faq enhancement failed, keeping draft as is")
			}
		}
		d.Conclusion = quality.SpliceKeywords(d.Conclusion, report.MissingKeywords, u.vars.Industry+" industry")
		report = quality.Analyze(d, ks.MainKeyword, ks.Subsidiary)
		report.Enhanced = true
	}
	d.Quality = report
	return &StepResult{Quality: report}, nil
}

// finalize validates the whole draft, materializes the immutable Article,
// flips the keyword set and deletes the session. It is the sole destructor
// of a generation session; any missing field leaves everything intact.
func (u *sessionUC) finalize(ctx context.Context, s *model.GenerationSession, ks *model.KeywordSet) (*StepResult, error) {
	if missing := missingDraftField(&s.Draft); missing != "" {
		metrics.IncSessionStep("finalize", "precondition")
		return nil, &domain.PreconditionError{Step: "finalize", Missing: missing}
	}

	plain := render.SimpleHTML(&s.Draft)
	now := u.now()
	article := &model.Article{
		ID:           uuid.NewString(),
		KeywordSetID: ks.ID,
		TitleTag:     s.Draft.TitleTag,
		H1:           s.Draft.H1,
		Opening:      s.Draft.Opening,
		Subheadings:  s.Draft.Subheadings,
		Sections:     s.Draft.Sections,
		CTA:          s.Draft.CTA,
		Conclusion:   s.Draft.Conclusion,
		EnhancedHTML: s.Draft.EnhancedHTML,
		PlainHTML:    plain,
		Quality:      s.Draft.Quality,
		WordCount:    s.Draft.Quality.WordCount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := u.tx.WithTx(ctx, func(ctx context.Context, qx any) error {
		if err := u.articles.Save(ctx, qx, article); err != nil {
			return err
		}
		return u.keywords.UpdateStatus(ctx, qx, ks.ID, model.StatusBlogGenerated)
	})
	if err != nil {
		metrics.IncSessionStep("finalize", "error")
		return nil, fmt.Errorf("finalize article: %w", err)
	}

	// Finalize is the commit point: the article is never rolled back, so a
	// failed session delete only leaves a TTL-bound husk behind.
	if err := u.store.Delete(ctx, ks.ID); err != nil {
		u.log.Warn().Err(err).Str("keyword_set", ks.ID).Msg("session delete failed after finalize")
	}
	metrics.IncSessionStep("finalize", "ok")
	metrics.IncSessionOutcome("finalized")
	u.log.Info().Str("keyword_set", ks.ID).Str("article", article.ID).Int("words", article.WordCount).Msg("session finalized")
	return &StepResult{Step: "finalize", NextStep: 0, Article: article}, nil
}

func missingDraftField(d *model.ArticleDraft) string {
	switch {
	case d.TitleTag == "":
		return "title"
	case d.H1 == "":
		return "h1 heading"
	case d.Opening == "":
		return "opening paragraph"
	case len(d.Subheadings) == 0:
		return "subheadings"
	case len(d.Sections) == 0:
		return "content sections"
	case d.CTA == "":
		return "call to action"
	case d.Conclusion == "":
		return "conclusion"
	case d.Quality == nil:
		return "quality report"
	}
	return ""
}

func (u *sessionUC) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, usage, err := u.gen.GenerateWithUsage(ctx, u.modelName, prompt)
	metrics.ObserveGeneration("content", u.modelName, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens,
		int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", &domain.UpstreamError{Stage: "content_generation", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &domain.UpstreamError{Stage: "content_generation", Err: fmt.Errorf("empty generation result")}
	}
	return text, nil
}

var subheadingNoise = regexp.MustCompile(`^\d+[\.\)]\s*|^[-•*]\s*|^H2:\s*`)

// parseSubheadings extracts heading lines and pads with keyword-derived
// defaults so the section step always has its full set.
func parseSubheadings(raw string, ks *model.KeywordSet, n int) []string {
	var subs []string
	for _, line := range strings.Split(raw, "\n") {
		line = subheadingNoise.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.Trim(line, `"'`)
		if len(line) > 10 {
			subs = append(subs, line)
		}
	}
	if len(subs) < n {
		defaults := []string{
			fmt.Sprintf("How %s Transforms the Industry", ks.MainKeyword),
			fmt.Sprintf("Best Practices for %s", firstOr(ks.Subsidiary, 0, ks.MainKeyword)),
			fmt.Sprintf("Why %s Matters", firstOr(ks.Subsidiary, 1, ks.MainKeyword)),
			fmt.Sprintf("The Future of %s", ks.MainKeyword),
		}
		subs = append(subs, defaults[len(subs):n]...)
	}
	return subs[:n]
}

func firstOr(ss []string, i int, fallback string) string {
	if i < len(ss) {
		return ss[i]
	}
	return fallback
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
