// Package llm provides the text-generation clients used by the pipeline
// and content services, plus JSON extraction for structured responses.
package llm

import "context"

// TextClient is the minimal surface the engine needs from a
// text-generation backend. Use this interface for dependency injection
// to enable mocking in tests.
type TextClient interface {
	// Complete generates a single text completion for the prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Ensure implementations satisfy TextClient at compile time.
var (
	_ TextClient = (*AnthropicClient)(nil)
	_ TextClient = (*OpenAIClient)(nil)
	_ TextClient = (*MockTextClient)(nil)
)
