// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"strings"
	"sync"

	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
)

// fakeGenerator returns canned text shaped for whichever prompt it sees.
// Tests override GenerateFn to inject failures or specific output.
type fakeGenerator struct {
	mu         sync.Mutex
	calls      int
	GenerateFn func(ctx context.Context, model, prompt string) (string, error)
}

func (f *fakeGenerator) ListModels(ctx context.Context) ([]string, error) {
	return []string{"fake-model"}, nil
}

func (f *fakeGenerator) CountTokens(ctx context.Context, model, prompt string) (int, error) {
	return len(strings.Fields(prompt)), nil
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	text, _, err := f.GenerateWithUsage(ctx, model, prompt)
	return text, err
}

func (f *fakeGenerator) GenerateWithUsage(ctx context.Context, model, prompt string) (string, adapter.Usage, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.GenerateFn != nil {
		text, err := f.GenerateFn(ctx, model, prompt)
		return text, adapter.Usage{}, err
	}
	return cannedResponse(prompt), adapter.Usage{PromptTokens: 10, CompletionTokens: 50, TotalTokens: 60}, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func cannedResponse(prompt string) string {
	switch {
	case strings.Contains(prompt, "H2 subheadings"):
		return "Choosing the Right Equipment for the Job\nMaintenance Habits That Extend Tool Life\nSafety Practices Every Operator Needs\nWhere the Industry Is Heading Next"
	case strings.Contains(prompt, "FAQ section"):
		return `<h3>Frequently Asked Questions</h3><div class="faq-item"><h4>Is it worth it?</h4><p>Yes, for most shops.</p></div>`
	case strings.Contains(prompt, "blog section"):
		return "<p>" + strings.Repeat("useful detail about the topic at hand ", 60) + "</p>"
	case strings.Contains(prompt, "opening paragraph"):
		return "<p>Have you ever wondered how much downtime costs a busy shop every single week?</p>"
	case strings.Contains(prompt, "call-to-action"):
		return "<p>Ready to transform your operations? Call us today.</p>"
	case strings.Contains(prompt, "conclusion"):
		return "<p>The takeaways are clear. Where will you start?</p>"
	case strings.Contains(prompt, "H1 heading"):
		return "A Practical Guide Worth Reading"
	default:
		return "A Practical Guide to Getting Started"
	}
}

var _ adapter.ContentGenerator = (*fakeGenerator)(nil)

// fakeResearchProvider returns fixed snippets or an injected error.
type fakeResearchProvider struct {
	Snippets []model.ResearchSnippet
	Err      error
}

func (f *fakeResearchProvider) Search(ctx context.Context, keyword string, limit int) ([]model.ResearchSnippet, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Snippets) > limit {
		return f.Snippets[:limit], nil
	}
	return f.Snippets, nil
}

var _ adapter.ResearchProvider = (*fakeResearchProvider)(nil)

// fakeImageProvider returns fixed candidates or an injected error.
type fakeImageProvider struct {
	Images []model.ImageCandidate
	Err    error
}

func (f *fakeImageProvider) Search(ctx context.Context, keyword string, limit int) ([]model.ImageCandidate, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Images) > limit {
		return f.Images[:limit], nil
	}
	return f.Images, nil
}

var _ adapter.ImageProvider = (*fakeImageProvider)(nil)

// fakeNotifier records messages.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	Err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, text string) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

var _ adapter.Notifier = (*fakeNotifier)(nil)

func someSnippets() []model.ResearchSnippet {
	return []model.ResearchSnippet{
		{Title: "Guide", Snippet: "Plenty of operators upgrade their equipment every five years.", Source: "duckduckgo"},
		{Title: "Review", Snippet: "Maintenance schedules cut downtime by a third.", Source: "bing"},
		{Title: "Forum", Snippet: "Safety gear is the first purchase, not the last.", Source: "duckduckgo"},
	}
}

func someImages() []model.ImageCandidate {
	return []model.ImageCandidate{
		{URL: "https://img.example.com/1.jpg", Alt: "first"},
		{URL: "https://img.example.com/2.jpg", Alt: "second"},
		{URL: "https://img.example.com/3.jpg", Alt: "third"},
		{URL: "https://img.example.com/4.jpg", Alt: "fourth"},
		{URL: "https://img.example.com/5.jpg", Alt: "fifth"},
	}
}
