package analysis

import (
	"context"
)

// Provider names accepted by the service
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderGrok   = "grok"
)

// Provider defines the interface for text-generation backends
type Provider interface {
	// Complete sends the prompt and returns the raw generated text
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)

	// Name returns the provider's registry name
	Name() string

	// IsAvailable reports whether the provider is configured and usable
	IsAvailable() bool
}

// CompletionOptions configures a generation request
type CompletionOptions struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

// DefaultCompletionOptions returns the generation parameters used for
// idea analysis
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		Temperature:     0.7,
		MaxOutputTokens: 2048,
	}
}
