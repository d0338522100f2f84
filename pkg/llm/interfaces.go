// Package llm provides the AI name-generation providers.
package llm

import (
	"context"
	"time"
)

// GenerateRequest is one name-generation call to a single model.
type GenerateRequest struct {
	Description  string
	Mode         string
	DeepThinking bool
	Count        int // how many names to ask for; 0 uses the default
}

// GenerateResult is the parsed outcome of a provider call.
type GenerateResult struct {
	Names            []string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ResponseTime     time.Duration
}

// NameProvider generates candidate business names for one model.
// Use this interface for dependency injection to enable mocking in tests.
type NameProvider interface {
	// GenerateNames produces a list of candidate names, or an error.
	GenerateNames(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// Model returns the model identifier this provider serves.
	Model() string
}

// DefaultNameCount is how many names a single model is asked for.
const DefaultNameCount = 10

// Ensure the concrete clients implement NameProvider at compile time.
var (
	_ NameProvider = (*OpenAIClient)(nil)
	_ NameProvider = (*AnthropicClient)(nil)
)
