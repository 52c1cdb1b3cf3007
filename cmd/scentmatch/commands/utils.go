// ABOUTME: Shared wiring and helpers for CLI commands
// ABOUTME: Builds the generator stack from configuration
package commands

import (
	"fmt"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/cache"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/config"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/llm"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/matryoshka"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/ratelimit"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/storage/sqlite"
)

// appStack holds the wired components for one CLI invocation. The caller
// owns the lifecycle and must Close when done.
type appStack struct {
	cfg       *config.Config
	db        *sqlite.DB
	store     *sqlite.Store
	generator *matryoshka.Generator
}

func (s *appStack) Close() error {
	return s.db.Close()
}

// buildStack loads configuration and constructs the full generator stack
func buildStack() (*appStack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := sqlite.NewStore(db)

	provider, err := llm.NewOpenAIClient(&llm.ClientConfig{
		APIKey:     cfg.OpenAIKey,
		Model:      cfg.EmbeddingModel,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Timeout:    cfg.Timeout,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	limiter, err := ratelimit.New(cfg.RateLimitRPM)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating rate limiter: %w", err)
	}

	var c *cache.Cache
	if cfg.CacheEnabled {
		c = cache.New(cfg.CacheMaxEntries, cfg.CacheTTL, store)
	}

	generator, err := matryoshka.New(cfg, provider, store, c, limiter, nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	return &appStack{cfg: cfg, db: db, store: store, generator: generator}, nil
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
