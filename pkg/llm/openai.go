package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient serves one model over an OpenAI-compatible chat endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// OpenAIConfig holds configuration for creating an OpenAI-compatible client.
type OpenAIConfig struct {
	Endpoint string // Base URL, e.g., "https://api.openai.com/v1"
	Model    string // Model name, e.g., "gpt-4o"
	APIKey   string // Optional for local endpoints
}

// NewOpenAIClient creates a client for one OpenAI-compatible model.
func NewOpenAIClient(cfg *OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("llm"),
	}, nil
}

// GenerateNames asks the model for candidate names and parses the JSON list
// out of the completion.
func (c *OpenAIClient) GenerateNames(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	prompt := BuildNamingPrompt(req)

	c.logger.Debug("provider request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Bool("deep_thinking", req.DeepThinking))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: namingSystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.9,
		// Control thinking/reasoning mode via chat_template_kwargs.
		// Works with vLLM, Nemotron, Qwen3 and other models that support it.
		ChatTemplateKwargs: map[string]any{
			"enable_thinking": req.DeepThinking,
		},
	})
	if err != nil {
		c.logger.Error("provider request failed",
			zap.String("model", c.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ClassifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	names, err := ParseNameList(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse names from %s: %w", c.model, err)
	}

	elapsed := time.Since(start)
	c.logger.Info("provider request completed",
		zap.String("model", c.model),
		zap.Int("names", len(names)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", elapsed))

	return &GenerateResult{
		Names:            names,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		ResponseTime:     elapsed,
	}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}
