//go:build !integration

package ai_test

import (
	"context"
	"testing"

	"blogforge/internal/domain/ports/adapter"
	ai "blogforge/internal/infra/adapters/ai"
)

type stubGen struct {
	name string
	n    int
	last string
}

func (s *stubGen) ListModels(ctx context.Context) ([]string, error) {
	return []string{s.name + "-model"}, nil
}
func (s *stubGen) CountTokens(ctx context.Context, model, prompt string) (int, error) {
	s.n++
	s.last = model
	return 1, nil
}
func (s *stubGen) Generate(ctx context.Context, model, prompt string) (string, error) {
	s.n++
	s.last = model
	return "ok", nil
}
func (s *stubGen) GenerateWithUsage(ctx context.Context, model, prompt string) (string, adapter.Usage, error) {
	s.n++
	s.last = model
	return "ok", adapter.Usage{PromptTokens: 1, CompletionTokens: 1}, nil
}

func TestRouting_Heuristics_And_Fallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	open := &stubGen{name: "openai"}
	gem := &stubGen{name: "gemini"}

	m := ai.NewMultiAdapter(
		"gemini",
		map[string]adapter.ContentGenerator{"openai": open, "gemini": gem},
	)

	// gpt-* -> openai
	_, _, _ = m.GenerateWithUsage(ctx, "gpt-4o-mini", "p")
	if open.n != 1 || gem.n != 0 {
		t.Fatalf("gpt prefix should route to openai, got open:%d gem:%d", open.n, gem.n)
	}
	open.n, gem.n = 0, 0

	// gemini-* -> gemini
	_, _ = m.Generate(ctx, "gemini-2.0-flash", "p")
	if gem.n != 1 || open.n != 0 {
		t.Fatalf("gemini prefix should route to gemini, got open:%d gem:%d", open.n, gem.n)
	}
	open.n, gem.n = 0, 0

	// unknown model -> default provider
	_, _ = m.CountTokens(ctx, "mystery-model", "p")
	if gem.n != 1 || open.n != 0 {
		t.Fatalf("unknown model should route to the default provider, got open:%d gem:%d", open.n, gem.n)
	}
}

func TestListModelsUnion(t *testing.T) {
	t.Parallel()
	m := ai.NewMultiAdapter("gemini", map[string]adapter.ContentGenerator{
		"openai": &stubGen{name: "openai"},
		"gemini": &stubGen{name: "gemini"},
	})
	models, err := m.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 {
		t.Errorf("models = %v, want union of both providers", models)
	}
}
