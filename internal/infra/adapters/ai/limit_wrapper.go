// File: internal/infra/adapters/ai/limit_wrapper.go
package ai

import (
	"context"

	"blogforge/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ContentGenerator = (*limitedGenerator)(nil)

// limitedGenerator caps concurrent generation calls. The upstream providers
// rate-limit per key; one batch worker plus interactive sessions can exceed
// that without a gate.
type limitedGenerator struct {
	inner adapter.ContentGenerator
	sem   chan struct{}
}

func NewLimitedGenerator(inner adapter.ContentGenerator, maxConcurrent int) adapter.ContentGenerator {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedGenerator{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedGenerator) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}

func (l *limitedGenerator) CountTokens(ctx context.Context, model, prompt string) (int, error) {
	return l.inner.CountTokens(ctx, model, prompt)
}

func (l *limitedGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Generate(ctx, model, prompt)
}

func (l *limitedGenerator) GenerateWithUsage(ctx context.Context, model, prompt string) (string, adapter.Usage, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.GenerateWithUsage(ctx, model, prompt)
}
