package repository

import (
	"context"

	"blogforge/internal/domain/model"
)

// SessionStore keeps generation sessions, keyed by keyword set, with a TTL
// matching the session's ExpiresAt.
//
// Get returns domain.ErrSessionNotFound when no session exists. Expiry is
// judged by the caller against the session's own ExpiresAt; the store's TTL
// only garbage-collects.
type SessionStore interface {
	Put(ctx context.Context, s *model.GenerationSession) error

	// PutIfStep writes s only when the stored session's cursor still equals
	// expectStep, and returns domain.ErrConflict otherwise.
	PutIfStep(ctx context.Context, s *model.GenerationSession, expectStep int) error

	Get(ctx context.Context, keywordSetID string) (*model.GenerationSession, error)
	Delete(ctx context.Context, keywordSetID string) error
}
