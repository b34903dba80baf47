// File: internal/usecase/research_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
	"blogforge/internal/domain/ports/repository"
)

// Compile-time check
var _ ResearchUseCase = (*researchUC)(nil)

type ResearchUseCase interface {
	Run(ctx context.Context, keywordSetID string) (*model.ResearchData, error)
	Get(ctx context.Context, keywordSetID string) (*model.ResearchData, error)
}

type researchUC struct {
	keywords    repository.KeywordSetRepository
	research    repository.ResearchRepository
	providers   []adapter.ResearchProvider
	maxSnippets int
	company     string
	log         *zerolog.Logger
}

func NewResearchUseCase(
	keywords repository.KeywordSetRepository,
	research repository.ResearchRepository,
	providers []adapter.ResearchProvider,
	maxSnippets int,
	company string,
	logger *zerolog.Logger,
) *researchUC {
	l := logger.With().Str("component", "research_uc").Logger()
	if maxSnippets <= 0 {
		maxSnippets = 10
	}
	return &researchUC{
		keywords:    keywords,
		research:    research,
		providers:   providers,
		maxSnippets: maxSnippets,
		company:     company,
		log:         &l,
	}
}

// Run scrapes research context for every keyword in the set. A set that has
// already been scraped is not scraped again; failure of every provider for
// every keyword marks the set scraping_failed.
func (u *researchUC) Run(ctx context.Context, keywordSetID string) (*model.ResearchData, error) {
	ks, err := u.keywords.FindByID(ctx, nil, keywordSetID)
	if err != nil {
		return nil, err
	}
	if ks.Status != model.StatusCreated && ks.Status != model.StatusScrapingFailed {
		return nil, fmt.Errorf("%w: keyword set already scraped", domain.ErrAlreadyExists)
	}

	if err := u.keywords.UpdateStatus(ctx, nil, ks.ID, model.StatusScraping); err != nil {
		u.log.Warn().Err(err).Str("id", ks.ID).Msg("status update failed")
	}

	var snippets []model.ResearchSnippet
	for _, kw := range ks.AllKeywords() {
		if len(snippets) >= u.maxSnippets {
			break
		}
		got, err := u.search(ctx, kw, u.maxSnippets-len(snippets))
		if err != nil {
			u.log.Warn().Err(err).Str("keyword", kw).Msg("research provider failed")
			continue
		}
		snippets = append(snippets, got...)
	}

	if len(snippets) == 0 {
		if err := u.keywords.UpdateStatus(ctx, nil, ks.ID, model.StatusScrapingFailed); err != nil {
			u.log.Warn().Err(err).Str("id", ks.ID).Msg("status update failed")
		}
		return nil, &domain.UpstreamError{Stage: "research", Err: fmt.Errorf("no snippets found for %q", ks.MainKeyword)}
	}

	rd := &model.ResearchData{
		KeywordSetID:   ks.ID,
		Snippets:       snippets,
		ProductContext: u.productContext(ks),
		ScrapedAt:      time.Now(),
	}
	if err := u.research.Save(ctx, nil, rd); err != nil {
		return nil, fmt.Errorf("save research data: %w", err)
	}
	if err := u.keywords.UpdateStatus(ctx, nil, ks.ID, model.StatusScraped); err != nil {
		u.log.Warn().Err(err).Str("id", ks.ID).Msg("status update failed")
	}
	u.log.Info().Str("id", ks.ID).Int("snippets", len(snippets)).Msg("research complete")
	return rd, nil
}

// search tries each provider in order until one returns results.
func (u *researchUC) search(ctx context.Context, keyword string, limit int) ([]model.ResearchSnippet, error) {
	var lastErr error
	for _, p := range u.providers {
		got, err := p.Search(ctx, keyword, limit)
		if err != nil {
			lastErr = err
			continue
		}
		if len(got) > 0 {
			return got, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no provider returned results")
	}
	return nil, lastErr
}

// productContext synthesizes the company-angle snippet woven into prompts.
func (u *researchUC) productContext(ks *model.KeywordSet) string {
	if u.company == "" {
		return ""
	}
	return fmt.Sprintf("%s offers solutions related to %s, including %s.",
		u.company, ks.MainKeyword, strings.Join(ks.Subsidiary, ", "))
}

func (u *researchUC) Get(ctx context.Context, keywordSetID string) (*model.ResearchData, error) {
	return u.research.FindByKeywordSet(ctx, nil, keywordSetID)
}
