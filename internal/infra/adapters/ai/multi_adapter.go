// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"strings"

	"blogforge/internal/domain/ports/adapter"
)

var _ adapter.ContentGenerator = (*MultiAdapter)(nil)

// MultiAdapter routes generation calls to a provider by model name. Each
// provider adapter carries its own default model.
type MultiAdapter struct {
	defaultProvider string // "openai" or "gemini"
	byProvider      map[string]adapter.ContentGenerator
}

func NewMultiAdapter(defaultProvider string, byProvider map[string]adapter.ContentGenerator) *MultiAdapter {
	return &MultiAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
	}
}

func (m *MultiAdapter) resolveProvider(model string) string {
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"), strings.HasPrefix(l, "o1"), strings.HasPrefix(l, "o3"):
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiAdapter) pick(model string) adapter.ContentGenerator {
	if a := m.byProvider[m.resolveProvider(model)]; a != nil {
		return a
	}
	// last resort: first available
	for _, a := range m.byProvider {
		if a != nil {
			return a
		}
	}
	return nil
}

func (m *MultiAdapter) ListModels(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, a := range m.byProvider {
		list, _ := a.ListModels(ctx)
		for _, name := range list {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	return out, nil
}

func (m *MultiAdapter) CountTokens(ctx context.Context, model, prompt string) (int, error) {
	a := m.pick(model)
	if a == nil {
		return 0, nil
	}
	return a.CountTokens(ctx, model, prompt)
}

func (m *MultiAdapter) Generate(ctx context.Context, model, prompt string) (string, error) {
	a := m.pick(model)
	if a == nil {
		return "", nil
	}
	return a.Generate(ctx, model, prompt)
}

func (m *MultiAdapter) GenerateWithUsage(ctx context.Context, model, prompt string) (string, adapter.Usage, error) {
	a := m.pick(model)
	if a == nil {
		return "", adapter.Usage{}, nil
	}
	return a.GenerateWithUsage(ctx, model, prompt)
}
