// File: internal/infra/db/postgres/postgres_article_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

type ArticleRepo struct {
	pool *pgxpool.Pool
}

func NewArticleRepo(pool *pgxpool.Pool) *ArticleRepo {
	return &ArticleRepo{pool: pool}
}

const articleColumns = `
id, keyword_set_id, title_tag, h1, opening, subheadings, sections, cta, conclusion,
plain_html, enhanced_html, with_images_html, publish_ready_html,
metadata, quality, word_count, created_at, updated_at`

func (r *ArticleRepo) Save(ctx context.Context, qx any, a *model.Article) error {
	subheadings, err := json.Marshal(a.Subheadings)
	if err != nil {
		return fmt.Errorf("marshal subheadings: %w", err)
	}
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	var metadata, quality []byte
	if a.Metadata != nil {
		if metadata, err = json.Marshal(a.Metadata); err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}
	if a.Quality != nil {
		if quality, err = json.Marshal(a.Quality); err != nil {
			return fmt.Errorf("marshal quality: %w", err)
		}
	}

	const q = `
INSERT INTO articles (` + articleColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (id) DO UPDATE SET
  title_tag = EXCLUDED.title_tag,
  h1 = EXCLUDED.h1,
  opening = EXCLUDED.opening,
  subheadings = EXCLUDED.subheadings,
  sections = EXCLUDED.sections,
  cta = EXCLUDED.cta,
  conclusion = EXCLUDED.conclusion,
  plain_html = EXCLUDED.plain_html,
  enhanced_html = EXCLUDED.enhanced_html,
  with_images_html = EXCLUDED.with_images_html,
  publish_ready_html = EXCLUDED.publish_ready_html,
  metadata = EXCLUDED.metadata,
  quality = EXCLUDED.quality,
  word_count = EXCLUDED.word_count,
  updated_at = EXCLUDED.updated_at;`
	_, err = executorFor(r.pool, qx).Exec(ctx, q,
		a.ID, a.KeywordSetID, a.TitleTag, a.H1, a.Opening, subheadings, sections, a.CTA, a.Conclusion,
		a.PlainHTML, a.EnhancedHTML, a.WithImagesHTML, a.PublishReadyHTML,
		metadata, quality, a.WordCount, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save article: %w", err)
	}
	return nil
}

func (r *ArticleRepo) FindByID(ctx context.Context, qx any, id string) (*model.Article, error) {
	const q = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1;`
	return scanArticle(executorFor(r.pool, qx).QueryRow(ctx, q, id))
}

func (r *ArticleRepo) FindByKeywordSet(ctx context.Context, qx any, keywordSetID string) (*model.Article, error) {
	const q = `SELECT ` + articleColumns + `
FROM articles WHERE keyword_set_id = $1 ORDER BY created_at DESC LIMIT 1;`
	return scanArticle(executorFor(r.pool, qx).QueryRow(ctx, q, keywordSetID))
}

func scanArticle(row pgx.Row) (*model.Article, error) {
	var a model.Article
	var subheadings, sections, metadata, quality []byte
	err := row.Scan(
		&a.ID, &a.KeywordSetID, &a.TitleTag, &a.H1, &a.Opening, &subheadings, &sections, &a.CTA, &a.Conclusion,
		&a.PlainHTML, &a.EnhancedHTML, &a.WithImagesHTML, &a.PublishReadyHTML,
		&metadata, &quality, &a.WordCount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(subheadings, &a.Subheadings); err != nil {
		return nil, fmt.Errorf("unmarshal subheadings: %w", err)
	}
	if err := json.Unmarshal(sections, &a.Sections); err != nil {
		return nil, fmt.Errorf("unmarshal sections: %w", err)
	}
	if len(metadata) > 0 {
		a.Metadata = &model.ArticleMetadata{}
		if err := json.Unmarshal(metadata, a.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if len(quality) > 0 {
		a.Quality = &model.QualityReport{}
		if err := json.Unmarshal(quality, a.Quality); err != nil {
			return nil, fmt.Errorf("unmarshal quality: %w", err)
		}
	}
	return &a, nil
}
