// File: internal/infra/db/postgres/postgres_image_repo.go
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

var _ repository.ImageRepository = (*ImageRepo)(nil)

type ImageRepo struct {
	pool *pgxpool.Pool
}

func NewImageRepo(pool *pgxpool.Pool) *ImageRepo {
	return &ImageRepo{pool: pool}
}

func (r *ImageRepo) Save(ctx context.Context, qx any, ib *model.ImageBatch) error {
	images, err := json.Marshal(ib.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	const q = `
INSERT INTO image_batches (keyword_set_id, keyword, images, fetched_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (keyword_set_id) DO UPDATE SET
  keyword = EXCLUDED.keyword,
  images = EXCLUDED.images,
  fetched_at = EXCLUDED.fetched_at;`
	_, err = executorFor(r.pool, qx).Exec(ctx, q, ib.KeywordSetID, ib.Keyword, images, ib.FetchedAt)
	if err != nil {
		return fmt.Errorf("save image batch: %w", err)
	}
	return nil
}

func (r *ImageRepo) FindByKeywordSet(ctx context.Context, qx any, keywordSetID string) (*model.ImageBatch, error) {
	const q = `
SELECT keyword_set_id, keyword, images, fetched_at
FROM image_batches WHERE keyword_set_id = $1;`
	var ib model.ImageBatch
	var images []byte
	err := executorFor(r.pool, qx).QueryRow(ctx, q, keywordSetID).
		Scan(&ib.KeywordSetID, &ib.Keyword, &images, &ib.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(images, &ib.Images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	return &ib, nil
}
