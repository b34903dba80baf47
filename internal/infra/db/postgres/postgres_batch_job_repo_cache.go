// File: internal/infra/db/postgres/postgres_batch_job_repo_cache.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/repository"
	"blogforge/internal/infra/metrics"
	red "blogforge/internal/infra/redis"
)

var _ repository.BatchJobRepository = (*batchJobRepoCacheDecorator)(nil)

// batchJobRepoCacheDecorator keeps the hot batch status document in Redis so
// pollers never hammer postgres. Writes go to the cache first: during a run
// the cache is the freshest copy and the durable write behind it is
// best-effort from the worker's point of view.
type batchJobRepoCacheDecorator struct {
	inner repository.BatchJobRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewBatchJobRepoCacheDecorator(inner repository.BatchJobRepository, cache red.RedisClient) repository.BatchJobRepository {
	return &batchJobRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   24 * time.Hour,
	}
}

func batchKey(id string) string { return fmt.Sprintf("batch:status:%s", id) }

func (d *batchJobRepoCacheDecorator) Save(ctx context.Context, qx any, job *model.BatchJob) error {
	if bytes, err := json.Marshal(job); err == nil {
		_ = d.cache.Set(ctx, batchKey(job.ID), bytes, d.ttl)
	}
	return d.inner.Save(ctx, qx, job)
}

func (d *batchJobRepoCacheDecorator) FindByID(ctx context.Context, qx any, id string) (*model.BatchJob, error) {
	val, err := d.cache.Get(ctx, batchKey(id))
	if err == nil {
		var job model.BatchJob
		if json.Unmarshal([]byte(val), &job) == nil {
			metrics.IncCacheRequest("batch_status", "hit")
			return &job, nil
		}
	}

	metrics.IncCacheRequest("batch_status", "miss")
	job, err := d.inner.FindByID(ctx, qx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(job); err == nil {
		_ = d.cache.Set(ctx, batchKey(id), bytes, d.ttl)
	}
	return job, nil
}

func (d *batchJobRepoCacheDecorator) FindRecent(ctx context.Context, qx any, limit int) ([]*model.BatchJob, error) {
	// Listing is rare; it always reads the durable store.
	return d.inner.FindRecent(ctx, qx, limit)
}
