// File: internal/usecase/metadata_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
	"blogforge/internal/domain/ports/repository"
	"blogforge/internal/quality"
	"blogforge/internal/seo"
)

// Compile-time check
var _ MetadataUseCase = (*metadataUC)(nil)

type MetadataUseCase interface {
	// Generate builds the SEO envelope and the publish-ready rendition,
	// marking the keyword set ready_to_publish.
	Generate(ctx context.Context, keywordSetID string) (*model.Article, error)
}

type metadataUC struct {
	keywords repository.KeywordSetRepository
	articles repository.ArticleRepository
	gen      adapter.ContentGenerator

	modelName string
	vars      promptVars
	pk        seo.ProductKnowledge
	now       func() time.Time
	log       *zerolog.Logger
}

func NewMetadataUseCase(
	keywords repository.KeywordSetRepository,
	articles repository.ArticleRepository,
	gen adapter.ContentGenerator,
	modelName string,
	vars promptVars,
	pk seo.ProductKnowledge,
	logger *zerolog.Logger,
) *metadataUC {
	l := logger.With().Str("component", "metadata_uc").Logger()
	return &metadataUC{
		keywords:  keywords,
		articles:  articles,
		gen:       gen,
		modelName: modelName,
		vars:      vars,
		pk:        pk,
		now:       time.Now,
		log:       &l,
	}
}

func (u *metadataUC) Generate(ctx context.Context, keywordSetID string) (*model.Article, error) {
	ks, err := u.keywords.FindByID(ctx, nil, keywordSetID)
	if err != nil {
		return nil, err
	}
	article, err := u.articles.FindByKeywordSet(ctx, nil, keywordSetID)
	if err != nil {
		return nil, err
	}

	title := article.H1
	if title == "" {
		title = article.TitleTag
	}
	// Thin titles get one generated replacement; failure keeps the draft title.
	if len(title) < 30 {
		summary := truncateRunes(article.Opening, 100)
		if generated, _, gerr := u.gen.GenerateWithUsage(ctx, u.modelName,
			titleFallbackPrompt(ks.MainKeyword, ks.AllKeywords(), summary, u.vars)); gerr == nil {
			if t := strings.Trim(strings.TrimSpace(generated), `"'`); t != "" {
				title = t
			}
		}
	}

	md := seo.BuildMetadata(title, article.Opening, ks.MainKeyword, ks.Subsidiary, u.pk)

	base := article.WithImagesHTML
	if base == "" {
		base = article.PlainHTML
	}
	article.Metadata = md
	article.PublishReadyHTML = seo.PublishHTML(base, md, u.pk, u.now())
	article.WordCount = quality.Analyze(draftFromArticle(article), ks.MainKeyword, ks.Subsidiary).WordCount
	article.UpdatedAt = u.now()

	if err := u.articles.Save(ctx, nil, article); err != nil {
		return nil, fmt.Errorf("save article metadata: %w", err)
	}
	if err := u.keywords.UpdateStatus(ctx, nil, ks.ID, model.StatusReadyToPublish); err != nil {
		u.log.Warn().Err(err).Str("id", ks.ID).Msg("status update failed")
	}
	u.log.Info().Str("id", ks.ID).Str("slug", md.Slug).Msg("metadata generated")
	return article, nil
}

func draftFromArticle(a *model.Article) *model.ArticleDraft {
	return &model.ArticleDraft{
		TitleTag:     a.TitleTag,
		H1:           a.H1,
		Opening:      a.Opening,
		Subheadings:  a.Subheadings,
		Sections:     a.Sections,
		CTA:          a.CTA,
		Conclusion:   a.Conclusion,
		EnhancedHTML: a.EnhancedHTML,
	}
}
