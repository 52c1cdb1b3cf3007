// ABOUTME: Error taxonomy for embedding generation
// ABOUTME: Separates quality-gate rejections from transient provider failures
package matryoshka

import (
	"errors"
	"fmt"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/llm"
)

// QualityGateError is returned when the lowest-resolution truncation fails
// the similarity gate. The content itself is at fault, not infrastructure,
// so retrying with the same input will not help.
type QualityGateError struct {
	ItemID     string
	Dimension  int
	Similarity float64
	Threshold  float64
}

func (e *QualityGateError) Error() string {
	return fmt.Sprintf("item %s: quality gate rejected truncation at dimension %d: similarity %.4f below threshold %.4f",
		e.ItemID, e.Dimension, e.Similarity, e.Threshold)
}

// IsRetryable reports whether a generation error is worth retrying with
// backoff. Quality-gate rejections are not; provider failures carry their
// own retryable flag; anything else (storage, context) defaults to true.
func IsRetryable(err error) bool {
	var qge *QualityGateError
	if errors.As(err, &qge) {
		return false
	}
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return true
}
