// ABOUTME: Centralized configuration for the embedding service
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// DefaultTargetDimensions are the resolutions generated per item, ascending
var DefaultTargetDimensions = []int{256, 512, 1024, 2048}

// Config holds all configuration for embedding generation and search
type Config struct {
	// OpenAI settings
	OpenAIKey      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Generation settings
	TargetDimensions     []int
	Normalize            bool
	QualityValidation    bool
	QualityGateThreshold float64
	BatchSize            int

	// Search settings
	ConfidenceThreshold float64

	// Cache settings
	CacheEnabled    bool
	CacheMaxEntries int
	CacheTTL        time.Duration

	// Provider rate limit
	RateLimitRPM int

	// Storage
	DBPath string
}

// DefaultDBPath returns the XDG-compliant default database location
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "scentmatch", "embeddings.db")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dims, err := parseDimensions(getEnv("SCENTMATCH_TARGET_DIMENSIONS", ""))
	if err != nil {
		return nil, fmt.Errorf("SCENTMATCH_TARGET_DIMENSIONS: %w", err)
	}
	if len(dims) == 0 {
		dims = append([]int(nil), DefaultTargetDimensions...)
	}

	cfg := &Config{
		OpenAIKey:            os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:       getEnv("SCENTMATCH_EMBEDDING_MODEL", "text-embedding-3-large"),
		Timeout:              getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:           getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:           getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		TargetDimensions:     dims,
		Normalize:            getEnvBool("SCENTMATCH_NORMALIZE", true),
		QualityValidation:    getEnvBool("SCENTMATCH_QUALITY_VALIDATION", true),
		QualityGateThreshold: getEnvFloat("SCENTMATCH_QUALITY_GATE_THRESHOLD", 0.8),
		BatchSize:            getEnvInt("SCENTMATCH_BATCH_SIZE", 4),
		ConfidenceThreshold:  getEnvFloat("SCENTMATCH_CONFIDENCE_THRESHOLD", 0.95),
		CacheEnabled:         getEnvBool("SCENTMATCH_CACHE_ENABLED", true),
		CacheMaxEntries:      getEnvInt("SCENTMATCH_CACHE_MAX_ENTRIES", 1000),
		CacheTTL:             getEnvDuration("SCENTMATCH_CACHE_TTL", 24*time.Hour),
		RateLimitRPM:         getEnvInt("SCENTMATCH_RATE_LIMIT_RPM", 60),
		DBPath:               getEnv("SCENTMATCH_DB_PATH", DefaultDBPath()),
	}

	return cfg, cfg.Validate()
}

// Validate checks configuration invariants once at load time
func (c *Config) Validate() error {
	if len(c.TargetDimensions) == 0 {
		return fmt.Errorf("at least one target dimension is required")
	}
	for i, d := range c.TargetDimensions {
		if d <= 0 {
			return fmt.Errorf("target dimensions must be positive, got %d", d)
		}
		if i > 0 && d <= c.TargetDimensions[i-1] {
			return fmt.Errorf("target dimensions must be strictly ascending, got %v", c.TargetDimensions)
		}
	}
	if c.QualityGateThreshold < 0 || c.QualityGateThreshold > 1 {
		return fmt.Errorf("SCENTMATCH_QUALITY_GATE_THRESHOLD must be 0-1, got %f", c.QualityGateThreshold)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("SCENTMATCH_CONFIDENCE_THRESHOLD must be 0-1, got %f", c.ConfidenceThreshold)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("SCENTMATCH_RATE_LIMIT_RPM must be positive, got %d", c.RateLimitRPM)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("SCENTMATCH_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("SCENTMATCH_CACHE_MAX_ENTRIES must be positive, got %d", c.CacheMaxEntries)
	}
	return nil
}

// MaxTargetDimension returns the largest configured resolution
func (c *Config) MaxTargetDimension() int {
	return c.TargetDimensions[len(c.TargetDimensions)-1]
}

// parseDimensions parses a comma-separated dimension list like "256,512,2048"
func parseDimensions(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	dims := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid dimension %q", p)
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
