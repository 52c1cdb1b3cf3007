// ABOUTME: Vector math helpers shared by generation, search, and storage
// ABOUTME: Cosine similarity, L2 norms, prefix truncation, normalization
package vector

import "math"

// CosineSimilarity calculates cosine similarity between two vectors.
// Mismatched lengths and zero vectors yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Norm returns the L2 norm of a vector
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Truncate returns a copy of the first dim components of v.
// Truncation is a pure prefix operation.
func Truncate(v []float64, dim int) []float64 {
	if dim > len(v) {
		dim = len(v)
	}
	out := make([]float64, dim)
	copy(out, v[:dim])
	return out
}

// Normalize scales v to unit L2 norm in place. A zero vector is left
// unchanged so the caller never divides by zero.
func Normalize(v []float64) {
	n := Norm(v)
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}
