// ABOUTME: Source text construction and content hashing for embeddings
// ABOUTME: Deterministic field concatenation hashed with SHA-256
package matryoshka

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
)

// BuildSourceText generates the text to embed for a catalog item.
// Fields are concatenated in a fixed order with separators so identical
// content always produces identical text.
func BuildSourceText(content models.ItemContent) string {
	var parts []string

	if content.Name != "" {
		parts = append(parts, content.Name)
	}
	if content.Brand != "" {
		parts = append(parts, content.Brand)
	}
	if content.Description != "" {
		parts = append(parts, content.Description)
	}
	if len(content.Accords) > 0 {
		parts = append(parts, strings.Join(content.Accords, ", "))
	}
	if len(content.Notes) > 0 {
		parts = append(parts, strings.Join(content.Notes, ", "))
	}

	return strings.Join(parts, " | ")
}

// NormalizeText lowercases and trims source text before hashing, so
// whitespace and casing changes do not force regeneration
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// ContentHash returns the SHA-256 hex digest of normalized source text.
// Stable across process restarts; used as the cache key and as the storage
// source_hash lookup key.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}
