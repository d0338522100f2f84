package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry_OpenAIModelsOnly(t *testing.T) {
	r, err := NewRegistry(&RegistryConfig{
		OpenAIBaseURL: "https://api.openai.com/v1",
		OpenAIAPIKey:  "test-key",
	}, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, r.Has(ModelGPT4o))
	assert.True(t, r.Has(ModelGPT4oMini))
	assert.False(t, r.Has(ModelClaudeSonnet), "claude models need an anthropic key")
	assert.False(t, r.Has("gpt-99"))
}

func TestRegistry_BothFamilies(t *testing.T) {
	r, err := NewRegistry(&RegistryConfig{
		OpenAIBaseURL:   "https://api.openai.com/v1",
		OpenAIAPIKey:    "test-key",
		AnthropicAPIKey: "test-key",
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{ModelClaudeHaiku, ModelClaudeSonnet, ModelGPT4o, ModelGPT4oMini}, r.KnownModels())
}

func TestRegistry_EmptyConfigHasNoModels(t *testing.T) {
	r, err := NewRegistry(&RegistryConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, r.KnownModels())
}

func TestRegistry_WithProviders(t *testing.T) {
	mock := NewMockProvider("mock-model")
	r := NewRegistryWithProviders(zap.NewNop(), mock)

	got, ok := r.Get("mock-model")
	require.True(t, ok)
	assert.Equal(t, "mock-model", got.Model())
}
