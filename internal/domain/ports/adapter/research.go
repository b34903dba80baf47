package adapter

import (
	"context"

	"blogforge/internal/domain/model"
)

// ResearchProvider gathers search-result snippets for a keyword.
type ResearchProvider interface {
	Search(ctx context.Context, keyword string, limit int) ([]model.ResearchSnippet, error)
}
