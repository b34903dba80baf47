// File: internal/usecase/image_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
	"blogforge/internal/domain/ports/repository"
	"blogforge/internal/infra/metrics"
	"blogforge/internal/placement"
)

// Compile-time check
var _ ImageUseCase = (*imageUC)(nil)

// IntegrationResult reports one placement run.
type IntegrationResult struct {
	HTML       string
	ImagesUsed int
	ImageURLs  []string
}

type ImageUseCase interface {
	Fetch(ctx context.Context, keywordSetID string) (*model.ImageBatch, error)
	Get(ctx context.Context, keywordSetID string) (*model.ImageBatch, error)

	// Integrate merges selected candidates into the article's current HTML.
	// Empty selection auto-picks the first four candidates.
	Integrate(ctx context.Context, keywordSetID string, selected []string) (*IntegrationResult, error)
}

type imageUC struct {
	keywords  repository.KeywordSetRepository
	images    repository.ImageRepository
	articles  repository.ArticleRepository
	providers []adapter.ImageProvider
	engine    *placement.Engine
	maxImages int
	log       *zerolog.Logger
}

func NewImageUseCase(
	keywords repository.KeywordSetRepository,
	images repository.ImageRepository,
	articles repository.ArticleRepository,
	providers []adapter.ImageProvider,
	engine *placement.Engine,
	maxImages int,
	logger *zerolog.Logger,
) *imageUC {
	l := logger.With().Str("component", "image_uc").Logger()
	if maxImages <= 0 {
		maxImages = 8
	}
	return &imageUC{
		keywords:  keywords,
		images:    images,
		articles:  articles,
		providers: providers,
		engine:    engine,
		maxImages: maxImages,
		log:       &l,
	}
}

// Fetch searches candidate images for the set's main keyword. Provider
// failure marks the set image_search_failed but candidates already found
// are kept.
func (u *imageUC) Fetch(ctx context.Context, keywordSetID string) (*model.ImageBatch, error) {
	ks, err := u.keywords.FindByID(ctx, nil, keywordSetID)
	if err != nil {
		return nil, err
	}
	if err := u.keywords.UpdateStatus(ctx, nil, ks.ID, model.StatusSearchingImages); err != nil {
		u.log.Warn().Err(err).Str("id", ks.ID).Msg("status update failed")
	}

	var candidates []model.ImageCandidate
	for _, p := range u.providers {
		got, err := p.Search(ctx, ks.MainKeyword, u.maxImages-len(candidates))
		if err != nil {
			u.log.Warn().Err(err).Str("keyword", ks.MainKeyword).Msg("image provider failed")
			continue
		}
		candidates = append(candidates, got...)
		if len(candidates) >= u.maxImages {
			candidates = candidates[:u.maxImages]
			break
		}
	}

	if len(candidates) == 0 {
		if err := u.keywords.UpdateStatus(ctx, nil, ks.ID, model.StatusImageSearchFailed); err != nil {
			u.log.Warn().Err(err).Str("id", ks.ID).Msg("status update failed")
		}
		return nil, &domain.UpstreamError{Stage: "image_search", Err: fmt.Errorf("no images found for %q", ks.MainKeyword)}
	}

	ib := &model.ImageBatch{
		KeywordSetID: ks.ID,
		Keyword:      ks.MainKeyword,
		Images:       candidates,
		FetchedAt:    time.Now(),
	}
	if err := u.images.Save(ctx, nil, ib); err != nil {
		return nil, fmt.Errorf("save image batch: %w", err)
	}
	if err := u.keywords.UpdateStatus(ctx, nil, ks.ID, model.StatusImagesFound); err != nil {
		u.log.Warn().Err(err).Str("id", ks.ID).Msg("status update failed")
	}
	return ib, nil
}

func (u *imageUC) Get(ctx context.Context, keywordSetID string) (*model.ImageBatch, error) {
	return u.images.FindByKeywordSet(ctx, nil, keywordSetID)
}

func (u *imageUC) Integrate(ctx context.Context, keywordSetID string, selected []string) (*IntegrationResult, error) {
	ks, err := u.keywords.FindByID(ctx, nil, keywordSetID)
	if err != nil {
		return nil, err
	}
	article, err := u.articles.FindByKeywordSet(ctx, nil, keywordSetID)
	if err != nil {
		return nil, err
	}
	base := article.BestHTML()
	if base == "" {
		return nil, fmt.Errorf("%w: article has no HTML rendition", domain.ErrInvalidArgument)
	}

	ib, err := u.images.FindByKeywordSet(ctx, nil, keywordSetID)
	if err != nil {
		return nil, err
	}
	picks := pickImages(ib.Images, selected)

	merged, stats := u.engine.Integrate(base, picks, ks.MainKeyword)
	metrics.AddPlacement("placeholder", stats.PlaceholderHits)
	metrics.AddPlacement("structural", stats.StructuralInserts)
	metrics.AddPlacement("fallback", stats.Fallbacks)
	metrics.AddPlacement("skipped", stats.Skipped)

	article.WithImagesHTML = merged
	article.UpdatedAt = time.Now()
	if err := u.articles.Save(ctx, nil, article); err != nil {
		return nil, fmt.Errorf("save article: %w", err)
	}
	if err := u.keywords.UpdateStatus(ctx, nil, ks.ID, model.StatusImagesIntegrated); err != nil {
		u.log.Warn().Err(err).Str("id", ks.ID).Msg("status update failed")
	}

	urls := make([]string, 0, len(picks))
	for _, p := range picks {
		urls = append(urls, p.URL)
	}
	u.log.Info().Str("id", ks.ID).Int("used", stats.Used).Msg("images integrated")
	return &IntegrationResult{HTML: merged, ImagesUsed: stats.Used, ImageURLs: urls}, nil
}

// pickImages honors an explicit selection by stable id (url) and otherwise
// auto-selects the first four candidates.
func pickImages(all []model.ImageCandidate, selected []string) []model.ImageCandidate {
	if len(selected) == 0 {
		if len(all) > 4 {
			return all[:4]
		}
		return all
	}
	want := make(map[string]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}
	var out []model.ImageCandidate
	for _, img := range all {
		if want[img.URL] {
			out = append(out, img)
		}
	}
	if len(out) > 4 {
		out = out[:4]
	}
	return out
}
