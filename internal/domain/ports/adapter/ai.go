package adapter

import "context"

// ModelInfo describes a generation model.
type ModelInfo struct {
	Name        string
	Description string
	MaxTokens   int
}

// Usage for a single generation call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ContentGenerator is the port for LLM text generation.
type ContentGenerator interface {
	ListModels(ctx context.Context) ([]string, error)

	// CountTokens returns prompt tokens for the given prompt, best-effort
	// when the provider has no exact counter.
	CountTokens(ctx context.Context, model string, prompt string) (int, error)

	// Generate returns only the generated text.
	Generate(ctx context.Context, model string, prompt string) (string, error)

	// GenerateWithUsage returns text plus usage as reported by the provider.
	GenerateWithUsage(ctx context.Context, model string, prompt string) (string, Usage, error)
}
