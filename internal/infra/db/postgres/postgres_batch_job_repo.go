// File: internal/infra/db/postgres/postgres_batch_job_repo.go
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

var _ repository.BatchJobRepository = (*BatchJobRepo)(nil)

type BatchJobRepo struct {
	pool *pgxpool.Pool
}

func NewBatchJobRepo(pool *pgxpool.Pool) *BatchJobRepo {
	return &BatchJobRepo{pool: pool}
}

const batchJobColumns = `
id, status, stage, total_rows, current_row, processed, failed, progress, results,
created_at, updated_at, completed_at`

func (r *BatchJobRepo) Save(ctx context.Context, qx any, job *model.BatchJob) error {
	results, err := json.Marshal(job.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	const q = `
INSERT INTO batch_jobs (` + batchJobColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  stage = EXCLUDED.stage,
  current_row = EXCLUDED.current_row,
  processed = EXCLUDED.processed,
  failed = EXCLUDED.failed,
  progress = EXCLUDED.progress,
  results = EXCLUDED.results,
  updated_at = EXCLUDED.updated_at,
  completed_at = EXCLUDED.completed_at;`
	_, err = executorFor(r.pool, qx).Exec(ctx, q,
		job.ID, string(job.Status), job.Stage, job.TotalRows, job.CurrentRow, job.Processed, job.Failed,
		job.Progress, results, job.CreatedAt, job.UpdatedAt, job.CompletedAt)
	if err != nil {
		return fmt.Errorf("save batch job: %w", err)
	}
	return nil
}

func (r *BatchJobRepo) FindByID(ctx context.Context, qx any, id string) (*model.BatchJob, error) {
	const q = `SELECT ` + batchJobColumns + ` FROM batch_jobs WHERE id = $1;`
	return scanBatchJob(executorFor(r.pool, qx).QueryRow(ctx, q, id))
}

func (r *BatchJobRepo) FindRecent(ctx context.Context, qx any, limit int) ([]*model.BatchJob, error) {
	const q = `SELECT ` + batchJobColumns + ` FROM batch_jobs ORDER BY created_at DESC LIMIT $1;`
	rows, err := executorFor(r.pool, qx).Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.BatchJob
	for rows.Next() {
		job, err := scanBatchJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func scanBatchJob(row pgx.Row) (*model.BatchJob, error) {
	var job model.BatchJob
	var status string
	var results []byte
	err := row.Scan(
		&job.ID, &status, &job.Stage, &job.TotalRows, &job.CurrentRow, &job.Processed, &job.Failed,
		&job.Progress, &results, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.Status = model.BatchStatus(status)
	if err := json.Unmarshal(results, &job.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return &job, nil
}
