// File: internal/usecase/keyword_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/repository"
)

// Compile-time check
var _ KeywordUseCase = (*keywordUC)(nil)

type KeywordUseCase interface {
	Create(ctx context.Context, main string, subsidiary []string) (*model.KeywordSet, error)
	Get(ctx context.Context, id string) (*model.KeywordSet, error)
	List(ctx context.Context, limit int) ([]*model.KeywordSet, error)
	Delete(ctx context.Context, id string) error
}

type keywordUC struct {
	keywords repository.KeywordSetRepository
	log      *zerolog.Logger
}

func NewKeywordUseCase(keywords repository.KeywordSetRepository, logger *zerolog.Logger) *keywordUC {
	l := logger.With().Str("component", "keyword_uc").Logger()
	return &keywordUC{keywords: keywords, log: &l}
}

// ValidateRow enforces the row contract shared by direct creation and batch
// rows: a non-empty main keyword and 4 or 5 subsidiary keywords.
func ValidateRow(main string, subsidiary []string) error {
	if strings.TrimSpace(main) == "" {
		return fmt.Errorf("%w: main keyword is required", domain.ErrInvalidArgument)
	}
	if len(subsidiary) < 4 || len(subsidiary) > 5 {
		return fmt.Errorf("%w: insufficient keywords, need 4-5 subsidiary keywords, got %d",
			domain.ErrInvalidArgument, len(subsidiary))
	}
	for _, s := range subsidiary {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: empty subsidiary keyword", domain.ErrInvalidArgument)
		}
	}
	return nil
}

func (u *keywordUC) Create(ctx context.Context, main string, subsidiary []string) (*model.KeywordSet, error) {
	if err := ValidateRow(main, subsidiary); err != nil {
		return nil, err
	}
	ks := model.NewKeywordSet(uuid.NewString(), strings.TrimSpace(main), trimAll(subsidiary))
	if err := u.keywords.Save(ctx, nil, ks); err != nil {
		return nil, fmt.Errorf("save keyword set: %w", err)
	}
	u.log.Info().Str("id", ks.ID).Str("main", ks.MainKeyword).Msg("keyword set created")
	return ks, nil
}

func (u *keywordUC) Get(ctx context.Context, id string) (*model.KeywordSet, error) {
	return u.keywords.FindByID(ctx, nil, id)
}

func (u *keywordUC) List(ctx context.Context, limit int) ([]*model.KeywordSet, error) {
	if limit <= 0 {
		limit = 50
	}
	return u.keywords.FindAll(ctx, nil, limit)
}

func (u *keywordUC) Delete(ctx context.Context, id string) error {
	return u.keywords.Delete(ctx, nil, id)
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
