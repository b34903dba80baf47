package adapter

import (
	"context"

	"blogforge/internal/domain/model"
)

// ImageProvider finds image candidates for a keyword.
type ImageProvider interface {
	Search(ctx context.Context, keyword string, limit int) ([]model.ImageCandidate, error)
}
