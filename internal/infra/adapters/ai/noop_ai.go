// File: internal/infra/adapters/ai/noop_ai.go
package ai

import (
	"context"
	"strings"

	"blogforge/internal/domain/ports/adapter"
)

var _ adapter.ContentGenerator = (*NoopGenerator)(nil)

// NoopGenerator produces deterministic filler content so the whole pipeline
// can run end to end in dev mode without API keys.
type NoopGenerator struct{}

func NewNoopGenerator() *NoopGenerator { return &NoopGenerator{} }

func (n *NoopGenerator) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop-model"}, nil
}

func (n *NoopGenerator) CountTokens(ctx context.Context, model, prompt string) (int, error) {
	return len(strings.Fields(prompt)), nil
}

func (n *NoopGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	text, _, err := n.GenerateWithUsage(ctx, model, prompt)
	return text, err
}

func (n *NoopGenerator) GenerateWithUsage(ctx context.Context, model, prompt string) (string, adapter.Usage, error) {
	// Shape the filler by the kind of fragment each prompt asks for, so the
	// downstream parsing and rendering paths all get exercised.
	var text string
	switch {
	case strings.Contains(prompt, "H2 subheadings"):
		text = "Getting Started With the Basics\nChoosing the Right Approach for You\nCommon Mistakes and How to Avoid Them\nPlanning Your Next Steps"
	case strings.Contains(prompt, "FAQ section"):
		text = `<h3>Frequently Asked Questions</h3><div class="faq-item"><h4>Where do I start?</h4><p>Start with the basics covered above.</p></div>`
	case strings.Contains(prompt, "blog section"):
		text = "<p>" + strings.Repeat("This placeholder paragraph stands in for generated content during development. ", 40) + "</p>"
	case strings.Contains(prompt, "opening paragraph"):
		text = "<p>Have you ever wondered what a development placeholder article looks like?</p>"
	case strings.Contains(prompt, "call-to-action"):
		text = "<p>Ready to get started? Reach out today.</p>"
	case strings.Contains(prompt, "conclusion"):
		text = "<p>That covers the essentials. The rest is practice.</p>"
	default:
		text = "A Development Placeholder Title"
	}
	words := len(strings.Fields(prompt))
	return text, adapter.Usage{PromptTokens: words, CompletionTokens: 50, TotalTokens: words + 50}, nil
}
