// ABOUTME: Quality metric computation for truncated embedding resolutions
// ABOUTME: Compares each resolution to the prefix of the un-normalized full vector
package matryoshka

import (
	"math"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/vector"
)

// computeQuality scores each produced resolution against the same-length
// prefix of the un-normalized full provider vector. Zero vectors score a
// similarity of 0, which is what trips the quality gate on a degenerate
// provider response.
func computeQuality(embeddings map[int][]float64, full []float64) map[int]models.QualityMetrics {
	quality := make(map[int]models.QualityMetrics, len(embeddings))
	fullDim := len(full)

	for dim, truncated := range embeddings {
		prefix := full[:dim]
		sim := vector.CosineSimilarity(truncated, prefix)
		np := normPreservation(truncated, prefix)
		quality[dim] = models.QualityMetrics{
			SimilarityToFull:        sim,
			NormPreservation:        np,
			InformationRetention:    clamp01(sim) * np,
			ComputationalEfficiency: 1 - float64(dim)/float64(fullDim),
		}
	}

	return quality
}

// normPreservation is 1 - |‖truncated‖ - ‖prefix‖| / ‖prefix‖, clamped to
// [0, 1], and 0 when the prefix norm is 0
func normPreservation(truncated, prefix []float64) float64 {
	pn := vector.Norm(prefix)
	if pn == 0 {
		return 0
	}
	return clamp01(1 - math.Abs(vector.Norm(truncated)-pn)/pn)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
