// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing and validation
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear environment to test defaults
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-large", cfg.EmbeddingModel)
	}
	if len(cfg.TargetDimensions) != 4 || cfg.TargetDimensions[0] != 256 || cfg.TargetDimensions[3] != 2048 {
		t.Errorf("TargetDimensions = %v, want [256 512 1024 2048]", cfg.TargetDimensions)
	}
	if cfg.MaxTargetDimension() != 2048 {
		t.Errorf("MaxTargetDimension() = %d, want 2048", cfg.MaxTargetDimension())
	}
	if !cfg.Normalize {
		t.Error("Normalize = false, want true")
	}
	if !cfg.QualityValidation {
		t.Error("QualityValidation = false, want true")
	}
	if cfg.QualityGateThreshold != 0.8 {
		t.Errorf("QualityGateThreshold = %f, want 0.8", cfg.QualityGateThreshold)
	}
	if cfg.ConfidenceThreshold != 0.95 {
		t.Errorf("ConfidenceThreshold = %f, want 0.95", cfg.ConfidenceThreshold)
	}
	if !cfg.CacheEnabled {
		t.Error("CacheEnabled = false, want true")
	}
	if cfg.CacheMaxEntries != 1000 {
		t.Errorf("CacheMaxEntries = %d, want 1000", cfg.CacheMaxEntries)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL = %v, want 24h", cfg.CacheTTL)
	}
	if cfg.RateLimitRPM != 60 {
		t.Errorf("RateLimitRPM = %d, want 60", cfg.RateLimitRPM)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.BatchSize != 4 {
		t.Errorf("BatchSize = %d, want 4", cfg.BatchSize)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("SCENTMATCH_EMBEDDING_MODEL", "text-embedding-3-small")
	os.Setenv("SCENTMATCH_TARGET_DIMENSIONS", "128, 256,512")
	os.Setenv("SCENTMATCH_NORMALIZE", "false")
	os.Setenv("SCENTMATCH_RATE_LIMIT_RPM", "120")
	os.Setenv("SCENTMATCH_CACHE_TTL", "1h")
	os.Setenv("SCENTMATCH_QUALITY_GATE_THRESHOLD", "0.9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.OpenAIKey != "test-key" {
		t.Errorf("OpenAIKey = %s, want test-key", cfg.OpenAIKey)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if len(cfg.TargetDimensions) != 3 || cfg.TargetDimensions[0] != 128 || cfg.TargetDimensions[2] != 512 {
		t.Errorf("TargetDimensions = %v, want [128 256 512]", cfg.TargetDimensions)
	}
	if cfg.Normalize {
		t.Error("Normalize = true, want false")
	}
	if cfg.RateLimitRPM != 120 {
		t.Errorf("RateLimitRPM = %d, want 120", cfg.RateLimitRPM)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v, want 1h", cfg.CacheTTL)
	}
	if cfg.QualityGateThreshold != 0.9 {
		t.Errorf("QualityGateThreshold = %f, want 0.9", cfg.QualityGateThreshold)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"descending dimensions", "SCENTMATCH_TARGET_DIMENSIONS", "512,256"},
		{"duplicate dimensions", "SCENTMATCH_TARGET_DIMENSIONS", "256,256"},
		{"non-numeric dimension", "SCENTMATCH_TARGET_DIMENSIONS", "256,abc"},
		{"gate threshold out of range", "SCENTMATCH_QUALITY_GATE_THRESHOLD", "1.5"},
		{"confidence out of range", "SCENTMATCH_CONFIDENCE_THRESHOLD", "-0.1"},
		{"zero rate limit", "SCENTMATCH_RATE_LIMIT_RPM", "0"},
		{"zero batch size", "SCENTMATCH_BATCH_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.val)
			}
		})
	}
}

func TestValidate_RejectsEmptyDimensions(t *testing.T) {
	cfg := &Config{
		QualityGateThreshold: 0.8,
		ConfidenceThreshold:  0.95,
		RateLimitRPM:         60,
		BatchSize:            1,
		CacheMaxEntries:      10,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with no target dimensions should fail")
	}
}
