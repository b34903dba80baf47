package repository

import (
	"context"

	"blogforge/internal/domain/model"
)

// ImageRepository stores the image candidates fetched per keyword set.
type ImageRepository interface {
	Save(ctx context.Context, qx any, ib *model.ImageBatch) error
	FindByKeywordSet(ctx context.Context, qx any, keywordSetID string) (*model.ImageBatch, error)
}
