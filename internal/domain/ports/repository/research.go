package repository

import (
	"context"

	"blogforge/internal/domain/model"
)

// ResearchRepository stores the scraped research context per keyword set.
// Save overwrites any previous data for the same set.
type ResearchRepository interface {
	Save(ctx context.Context, qx any, rd *model.ResearchData) error
	FindByKeywordSet(ctx context.Context, qx any, keywordSetID string) (*model.ResearchData, error)
}
