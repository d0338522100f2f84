package llm

import (
	"context"
)

// MockProvider is a configurable mock for testing name generation.
// Set the function field to control behavior in tests.
type MockProvider struct {
	// GenerateNamesFunc is called when GenerateNames is invoked.
	// If nil, returns a small fixed name list and nil error.
	GenerateNamesFunc func(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification
	GenerateNamesCalls int
}

// NewMockProvider creates a new mock with sensible defaults.
func NewMockProvider(model string) *MockProvider {
	return &MockProvider{ModelName: model}
}

// GenerateNames implements NameProvider.
func (m *MockProvider) GenerateNames(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	m.GenerateNamesCalls++
	if m.GenerateNamesFunc != nil {
		return m.GenerateNamesFunc(ctx, req)
	}
	return &GenerateResult{Names: []string{"MockName", "StubWorks"}}, nil
}

// Model implements NameProvider.
func (m *MockProvider) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Reset clears call tracking counters.
func (m *MockProvider) Reset() {
	m.GenerateNamesCalls = 0
}

// Ensure MockProvider implements NameProvider at compile time.
var _ NameProvider = (*MockProvider)(nil)
