package repository

import (
	"context"

	"blogforge/internal/domain/model"
)

// ArticleRepository persists finalized articles and their later HTML
// renditions.
type ArticleRepository interface {
	Save(ctx context.Context, qx any, a *model.Article) error
	FindByID(ctx context.Context, qx any, id string) (*model.Article, error)
	FindByKeywordSet(ctx context.Context, qx any, keywordSetID string) (*model.Article, error)
}
