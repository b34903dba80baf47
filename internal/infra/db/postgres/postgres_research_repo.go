// File: internal/infra/db/postgres/postgres_research_repo.go
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

var _ repository.ResearchRepository = (*ResearchRepo)(nil)

type ResearchRepo struct {
	pool *pgxpool.Pool
}

func NewResearchRepo(pool *pgxpool.Pool) *ResearchRepo {
	return &ResearchRepo{pool: pool}
}

func (r *ResearchRepo) Save(ctx context.Context, qx any, rd *model.ResearchData) error {
	snippets, err := json.Marshal(rd.Snippets)
	if err != nil {
		return fmt.Errorf("marshal snippets: %w", err)
	}
	const q = `
INSERT INTO research_data (keyword_set_id, snippets, product_context, scraped_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (keyword_set_id) DO UPDATE SET
  snippets = EXCLUDED.snippets,
  product_context = EXCLUDED.product_context,
  scraped_at = EXCLUDED.scraped_at;`
	_, err = executorFor(r.pool, qx).Exec(ctx, q, rd.KeywordSetID, snippets, rd.ProductContext, rd.ScrapedAt)
	if err != nil {
		return fmt.Errorf("save research data: %w", err)
	}
	return nil
}

func (r *ResearchRepo) FindByKeywordSet(ctx context.Context, qx any, keywordSetID string) (*model.ResearchData, error) {
	const q = `
SELECT keyword_set_id, snippets, product_context, scraped_at
FROM research_data WHERE keyword_set_id = $1;`
	var rd model.ResearchData
	var snippets []byte
	err := executorFor(r.pool, qx).QueryRow(ctx, q, keywordSetID).
		Scan(&rd.KeywordSetID, &snippets, &rd.ProductContext, &rd.ScrapedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(snippets, &rd.Snippets); err != nil {
		return nil, fmt.Errorf("unmarshal snippets: %w", err)
	}
	return &rd, nil
}
