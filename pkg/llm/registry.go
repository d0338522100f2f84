package llm

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Model identifiers accepted in session requests. Each maps to the provider
// family that serves it.
const (
	ModelGPT4o        = "gpt-4o"
	ModelGPT4oMini    = "gpt-4o-mini"
	ModelClaudeSonnet = "claude-sonnet-4-5"
	ModelClaudeHaiku  = "claude-haiku-3-5"
)

// RegistryConfig holds provider endpoints and keys for the model registry.
type RegistryConfig struct {
	OpenAIBaseURL   string
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// Registry maps known model identifiers to their provider clients. A model
// is only registered when its provider family is configured, so the known
// set shrinks gracefully on partially configured deployments.
type Registry struct {
	providers map[string]NameProvider
	logger    *zap.Logger
}

// NewRegistry builds the model registry from provider configuration.
func NewRegistry(cfg *RegistryConfig, logger *zap.Logger) (*Registry, error) {
	r := &Registry{
		providers: make(map[string]NameProvider),
		logger:    logger.Named("model-registry"),
	}

	if cfg.OpenAIBaseURL != "" {
		for _, model := range []string{ModelGPT4o, ModelGPT4oMini} {
			client, err := NewOpenAIClient(&OpenAIConfig{
				Endpoint: cfg.OpenAIBaseURL,
				Model:    model,
				APIKey:   cfg.OpenAIAPIKey,
			}, logger)
			if err != nil {
				return nil, fmt.Errorf("create openai client for %s: %w", model, err)
			}
			r.providers[model] = client
		}
	}

	if cfg.AnthropicAPIKey != "" {
		for _, model := range []string{ModelClaudeSonnet, ModelClaudeHaiku} {
			client, err := NewAnthropicClient(cfg.AnthropicAPIKey, model, logger)
			if err != nil {
				return nil, fmt.Errorf("create anthropic client for %s: %w", model, err)
			}
			r.providers[model] = client
		}
	}

	if len(r.providers) == 0 {
		r.logger.Warn("no providers configured, sessions will use the fallback generator only")
	}

	return r, nil
}

// NewRegistryWithProviders builds a registry from explicit providers.
// Intended for tests.
func NewRegistryWithProviders(logger *zap.Logger, providers ...NameProvider) *Registry {
	r := &Registry{
		providers: make(map[string]NameProvider, len(providers)),
		logger:    logger.Named("model-registry"),
	}
	for _, p := range providers {
		r.providers[p.Model()] = p
	}
	return r
}

// Get returns the provider serving the given model identifier.
func (r *Registry) Get(model string) (NameProvider, bool) {
	p, ok := r.providers[model]
	return p, ok
}

// Has reports whether the model identifier is in the known set.
func (r *Registry) Has(model string) bool {
	_, ok := r.providers[model]
	return ok
}

// KnownModels returns the sorted list of registered model identifiers.
func (r *Registry) KnownModels() []string {
	models := make([]string, 0, len(r.providers))
	for m := range r.providers {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}
