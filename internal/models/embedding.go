// ABOUTME: Multi-resolution embedding models for vector storage and search
// ABOUTME: Defines MultiResolutionEmbedding, metadata, and quality metrics
package models

import (
	"fmt"
	"sort"
	"time"
)

// EmbeddingVersion is bumped whenever the generation algorithm changes,
// so stored records can be detected as outdated and regenerated.
const EmbeddingVersion = 1

// Generation methods recorded in embedding metadata
const (
	MethodTruncation  = "truncation"
	MethodIndependent = "independent"
)

// SupportedResolutions are the resolutions the storage schema can hold,
// ascending. Configured target dimensions outside this set cannot be
// persisted and are skipped at generation time.
var SupportedResolutions = []int{256, 512, 1024, 2048}

// IsSupportedResolution reports whether dim has a storage column
func IsSupportedResolution(dim int) bool {
	for _, d := range SupportedResolutions {
		if d == dim {
			return true
		}
	}
	return false
}

// ItemContent holds the structured catalog fields that feed embedding generation
type ItemContent struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Accords     []string `json:"accords"`
	Notes       []string `json:"notes"`
}

// EmbeddingMetadata describes how a multi-resolution embedding was produced
type EmbeddingMetadata struct {
	SourceText       string          `json:"source_text"`
	SourceHash       string          `json:"source_hash"`
	Model            string          `json:"embedding_model"`
	GenerationMethod string          `json:"generation_method"`
	QualityScores    map[int]float64 `json:"quality_scores"`
	GenerationTimeMS int64           `json:"generation_time_ms"`
	TokensUsed       int             `json:"tokens_used"`
	APICostCents     float64         `json:"api_cost_cents"`
	EmbeddingVersion int             `json:"embedding_version"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// MultiResolutionEmbedding maps each generated resolution to a dense vector
// of exactly that length. Records are immutable once persisted; a changed
// source text produces a new record under a new source hash.
type MultiResolutionEmbedding struct {
	ItemID     string            `json:"item_id"`
	Embeddings map[int][]float64 `json:"embeddings"`
	Metadata   EmbeddingMetadata `json:"metadata"`
}

// Dimensions returns the present resolutions in ascending order
func (m *MultiResolutionEmbedding) Dimensions() []int {
	dims := make([]int, 0, len(m.Embeddings))
	for d := range m.Embeddings {
		dims = append(dims, d)
	}
	sort.Ints(dims)
	return dims
}

// VectorAt returns the vector for a resolution, or nil if absent
func (m *MultiResolutionEmbedding) VectorAt(dim int) []float64 {
	return m.Embeddings[dim]
}

// Validate checks the length invariant: every present resolution's vector
// length must equal its key, and at least one resolution must be present
func (m *MultiResolutionEmbedding) Validate() error {
	if m.ItemID == "" {
		return fmt.Errorf("embedding has empty item id")
	}
	if len(m.Embeddings) == 0 {
		return fmt.Errorf("embedding for item %s has no resolutions", m.ItemID)
	}
	for dim, vec := range m.Embeddings {
		if len(vec) != dim {
			return fmt.Errorf("item %s: resolution %d has vector length %d", m.ItemID, dim, len(vec))
		}
	}
	return nil
}

// QualityMetrics captures how much a truncated resolution preserves of the
// full provider vector. SimilarityToFull is cosine similarity in [-1, 1];
// the other three fields are ratios in [0, 1].
type QualityMetrics struct {
	SimilarityToFull        float64 `json:"similarity_to_full"`
	NormPreservation        float64 `json:"norm_preservation"`
	InformationRetention    float64 `json:"information_retention"`
	ComputationalEfficiency float64 `json:"computational_efficiency"`
}
