// ABOUTME: OpenAI client implementing the embedding provider interface
// ABOUTME: Uses text-embedding-3-large with the dimensions request parameter
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel supports matryoshka-style truncation up to 3072
// dimensions via the request-time dimensions parameter
const DefaultEmbeddingModel = string(openai.LargeEmbedding3)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	// BaseURL overrides the API endpoint; empty uses the OpenAI default
	BaseURL string
}

// DefaultClientConfig returns the default client configuration
func DefaultClientConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:     apiKey,
		Model:      DefaultEmbeddingModel,
		MaxRetries: 3,
		RetryDelay: time.Second * 2,
		Timeout:    30 * time.Second,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client     *openai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewOpenAIClient creates a new OpenAI client with the given configuration
func NewOpenAIClient(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := config.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		timeout:    timeout,
	}, nil
}

// Model returns the configured embedding model identifier
func (c *OpenAIClient) Model() string {
	return c.model
}

// Embed generates an embedding vector with the requested output length.
// Transient failures are retried with exponential backoff; exhaustion
// surfaces as a retryable ProviderError.
func (c *OpenAIClient) Embed(ctx context.Context, text string, dimensions int) (*EmbeddingResult, error) {
	if dimensions <= 0 {
		return nil, &ProviderError{Err: fmt.Errorf("dimensions must be positive, got %d", dimensions), Retryable: false}
	}

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(c.retryDelay, attempt)):
			case <-ctx.Done():
				return nil, &ProviderError{Err: ctx.Err(), Retryable: true}
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)

		resp, err := c.client.CreateEmbeddings(attemptCtx, openai.EmbeddingRequestStrings{
			Input:      []string{text},
			Model:      openai.EmbeddingModel(c.model),
			Dimensions: dimensions,
		})

		if err != nil {
			cancel()
			if invalidInput(err) {
				return nil, &ProviderError{Err: fmt.Errorf("provider rejected input: %w", err), Retryable: false}
			}
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Data) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		embedding32 := resp.Data[0].Embedding
		embedding64 := make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding64[i] = float64(v)
		}

		cancel()
		return &EmbeddingResult{
			Vector:     embedding64,
			TokensUsed: resp.Usage.TotalTokens,
		}, nil
	}

	return nil, &ProviderError{
		Err:       fmt.Errorf("failed to generate embedding after %d attempts: %w", c.maxRetries+1, lastErr),
		Retryable: true,
	}
}

// invalidInput reports whether the provider rejected the request content
// itself. Retrying the same text cannot succeed, so these bypass the
// retry loop entirely.
func invalidInput(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusBadRequest || apiErr.HTTPStatusCode == http.StatusUnprocessableEntity
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusBadRequest || reqErr.HTTPStatusCode == http.StatusUnprocessableEntity
	}
	return false
}
