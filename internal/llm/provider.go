// ABOUTME: Embedding provider interface and error taxonomy
// ABOUTME: Abstracts the upstream embedding service so tests can stub it
package llm

import "context"

// EmbeddingResult is one provider response: the full-length vector and the
// token count the call consumed
type EmbeddingResult struct {
	Vector     []float64
	TokensUsed int
}

// EmbeddingProvider turns text into a vector of the requested length. The
// provider's embedding space is assumed to support nested (matryoshka)
// semantics: any length-prefix of the returned vector is itself meaningful.
type EmbeddingProvider interface {
	// Embed generates an embedding for text with the desired output length.
	// The returned vector may be shorter if the provider's native length is
	// smaller than requested.
	Embed(ctx context.Context, text string, dimensions int) (*EmbeddingResult, error)

	// Model returns the model identifier recorded in embedding metadata.
	Model() string
}

// ProviderError wraps a failed provider call. Retryable is true for
// transient infrastructure failures (timeouts, network, 5xx) and false when
// the provider rejected the input text itself.
type ProviderError struct {
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
