// File: internal/infra/db/postgres/postgres_keyword_set_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/repository"
)

var _ repository.KeywordSetRepository = (*KeywordSetRepo)(nil)

type KeywordSetRepo struct {
	pool *pgxpool.Pool
}

func NewKeywordSetRepo(pool *pgxpool.Pool) *KeywordSetRepo {
	return &KeywordSetRepo{pool: pool}
}

func (r *KeywordSetRepo) Save(ctx context.Context, qx any, ks *model.KeywordSet) error {
	const q = `
INSERT INTO keyword_sets (id, main_keyword, subsidiary, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  main_keyword = EXCLUDED.main_keyword,
  subsidiary = EXCLUDED.subsidiary,
  status = EXCLUDED.status,
  updated_at = EXCLUDED.updated_at;`
	_, err := executorFor(r.pool, qx).Exec(ctx, q,
		ks.ID, ks.MainKeyword, ks.Subsidiary, string(ks.Status), ks.CreatedAt, ks.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save keyword set: %w", err)
	}
	return nil
}

func (r *KeywordSetRepo) FindByID(ctx context.Context, qx any, id string) (*model.KeywordSet, error) {
	const q = `
SELECT id, main_keyword, subsidiary, status, created_at, updated_at
FROM keyword_sets WHERE id = $1;`
	return scanKeywordSet(executorFor(r.pool, qx).QueryRow(ctx, q, id))
}

func (r *KeywordSetRepo) FindAll(ctx context.Context, qx any, limit int) ([]*model.KeywordSet, error) {
	const q = `
SELECT id, main_keyword, subsidiary, status, created_at, updated_at
FROM keyword_sets ORDER BY created_at DESC LIMIT $1;`
	rows, err := executorFor(r.pool, qx).Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.KeywordSet
	for rows.Next() {
		var ks model.KeywordSet
		var status string
		if err := rows.Scan(&ks.ID, &ks.MainKeyword, &ks.Subsidiary, &status, &ks.CreatedAt, &ks.UpdatedAt); err != nil {
			return nil, err
		}
		ks.Status = model.KeywordSetStatus(status)
		out = append(out, &ks)
	}
	return out, rows.Err()
}

func (r *KeywordSetRepo) UpdateStatus(ctx context.Context, qx any, id string, status model.KeywordSetStatus) error {
	const q = `UPDATE keyword_sets SET status=$2, updated_at=$3 WHERE id=$1;`
	tag, err := executorFor(r.pool, qx).Exec(ctx, q, id, string(status), time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *KeywordSetRepo) Delete(ctx context.Context, qx any, id string) error {
	const q = `DELETE FROM keyword_sets WHERE id = $1;`
	tag, err := executorFor(r.pool, qx).Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanKeywordSet(row pgx.Row) (*model.KeywordSet, error) {
	var ks model.KeywordSet
	var status string
	err := row.Scan(&ks.ID, &ks.MainKeyword, &ks.Subsidiary, &status, &ks.CreatedAt, &ks.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	ks.Status = model.KeywordSetStatus(status)
	return &ks, nil
}
