package repository

import (
	"context"

	"blogforge/internal/domain/model"
)

// KeywordSetRepository persists keyword sets. qx is an optional transaction
// handle; nil means the repository's own pool.
type KeywordSetRepository interface {
	Save(ctx context.Context, qx any, ks *model.KeywordSet) error
	FindByID(ctx context.Context, qx any, id string) (*model.KeywordSet, error)
	FindAll(ctx context.Context, qx any, limit int) ([]*model.KeywordSet, error)
	UpdateStatus(ctx context.Context, qx any, id string, status model.KeywordSetStatus) error
	Delete(ctx context.Context, qx any, id string) error
}
