package repository

import (
	"context"

	"blogforge/internal/domain/model"
)

// BatchJobRepository is the durable store of batch job status documents.
// The fast read path sits in front of it (see the status cache decorator).
type BatchJobRepository interface {
	Save(ctx context.Context, qx any, job *model.BatchJob) error
	FindByID(ctx context.Context, qx any, id string) (*model.BatchJob, error)
	FindRecent(ctx context.Context, qx any, limit int) ([]*model.BatchJob, error)
}
