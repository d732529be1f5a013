package llm

import (
	"context"
	"sync"
)

// MockTextClient is a configurable mock for testing LLM functionality.
// Set CompleteFunc to control behavior in tests. Prompts and call counts
// are recorded for verification; the mock is safe for concurrent use.
type MockTextClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, Complete returns an empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	mu            sync.Mutex
	completeCalls int
	prompts       []string
}

// NewMockTextClient creates a new mock with sensible defaults.
func NewMockTextClient() *MockTextClient {
	return &MockTextClient{ModelName: "mock-model"}
}

// Complete implements TextClient.
func (m *MockTextClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.completeCalls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

// Model implements TextClient.
func (m *MockTextClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// CompleteCalls returns how many times Complete was invoked.
func (m *MockTextClient) CompleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completeCalls
}

// Prompts returns a copy of all prompts seen so far.
func (m *MockTextClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
