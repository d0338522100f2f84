// Package imagen provides the logo image-generation provider.
package imagen

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client generates logo images. Use this interface for dependency injection
// to enable mocking in tests.
type Client interface {
	// GenerateImage renders one image for the prompt and returns its bytes.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// OpenAIImageClient renders images over the OpenAI image API.
type OpenAIImageClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds configuration for creating an image client.
type Config struct {
	Endpoint string
	Model    string
	APIKey   string
}

// NewOpenAIImageClient creates an image client.
func NewOpenAIImageClient(cfg *Config, logger *zap.Logger) (*OpenAIImageClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAIImageClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("imagen"),
	}, nil
}

// GenerateImage renders one image and returns the decoded bytes.
func (c *OpenAIImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	start := time.Now()

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Model:          c.model,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		c.logger.Error("image request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("create image: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no image in response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	c.logger.Info("image request completed",
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	return data, nil
}

// Ensure OpenAIImageClient implements Client at compile time.
var _ Client = (*OpenAIImageClient)(nil)

// MockClient is a configurable mock for testing image generation.
type MockClient struct {
	// GenerateImageFunc is called when GenerateImage is invoked.
	// If nil, returns a tiny placeholder SVG.
	GenerateImageFunc func(ctx context.Context, prompt string) ([]byte, error)

	// Call tracking for verification
	GenerateImageCalls int
}

// GenerateImage implements Client.
func (m *MockClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	m.GenerateImageCalls++
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, prompt)
	}
	return []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect fill="#000000"/></svg>`), nil
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
