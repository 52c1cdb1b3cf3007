// ABOUTME: Progressive multi-stage similarity search over stored vectors
// ABOUTME: Cheap low-dimension stages narrow candidates for expensive ones
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/vector"
)

// VectorSource supplies stored vectors at one resolution in catalog order.
// Implemented by the SQLite store.
type VectorSource interface {
	VectorsAt(dim int) ([]models.ItemVector, error)
}

// Options control one search call
type Options struct {
	// MaxResults caps the final result list; 0 means no extra cap beyond
	// the final stage's candidate count
	MaxResults int
	// MinSimilarity is an additional similarity floor applied on top of
	// each stage's own threshold
	MinSimilarity float64
	// EarlyTermination stops after any stage whose top result reaches the
	// confidence threshold
	EarlyTermination bool
	// ConfidenceThreshold overrides the engine default when positive
	ConfidenceThreshold float64
}

// Engine executes a fixed stage plan. Stages run strictly in order within
// one query; concurrent queries share nothing but the stored corpus.
type Engine struct {
	source     VectorSource
	stages     []models.SearchStage
	confidence float64
}

// DefaultStages is the standard plan: coarse 256-dimension screening, a
// 512-dimension cut, then full-precision ranking.
func DefaultStages() []models.SearchStage {
	return []models.SearchStage{
		{Dimension: 256, CandidateCount: 1000, Threshold: 0.6},
		{Dimension: 512, CandidateCount: 100, Threshold: 0.7},
		{Dimension: 2048, CandidateCount: 10, Threshold: 0.8},
	}
}

// New creates an Engine, validating the stage plan up front
func New(source VectorSource, stages []models.SearchStage, confidenceThreshold float64) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("vector source is required")
	}
	if err := models.ValidateStages(stages); err != nil {
		return nil, fmt.Errorf("invalid search plan: %w", err)
	}
	if confidenceThreshold < 0 || confidenceThreshold > 1 {
		return nil, fmt.Errorf("confidence threshold must be in [0, 1], got %f", confidenceThreshold)
	}
	return &Engine{
		source:     source,
		stages:     stages,
		confidence: confidenceThreshold,
	}, nil
}

// Search runs the stage plan against queryEmbeddings, a map from dimension
// to query vector covering every stage dimension. A storage failure at any
// stage fails the whole search; partial results would mislead a ranking
// consumer.
func (e *Engine) Search(ctx context.Context, queryEmbeddings map[int][]float64, opts Options) (*models.SearchResponse, error) {
	for _, stage := range e.stages {
		qv, ok := queryEmbeddings[stage.Dimension]
		if !ok {
			return nil, fmt.Errorf("query embedding missing for stage dimension %d", stage.Dimension)
		}
		if len(qv) != stage.Dimension {
			return nil, fmt.Errorf("query embedding for dimension %d has length %d", stage.Dimension, len(qv))
		}
	}

	if opts.ConfidenceThreshold < 0 || opts.ConfidenceThreshold > 1 {
		return nil, fmt.Errorf("confidence threshold override must be in [0, 1], got %f", opts.ConfidenceThreshold)
	}
	confidence := e.confidence
	if opts.ConfidenceThreshold > 0 {
		confidence = opts.ConfidenceThreshold
	}

	resp := &models.SearchResponse{}
	var survivors map[string]bool

	for _, stage := range e.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stageStart := time.Now()

		stored, err := e.source.VectorsAt(stage.Dimension)
		if err != nil {
			return nil, fmt.Errorf("stage %d (dimension %d): %w", resp.StagesExecuted+1, stage.Dimension, err)
		}

		threshold := stage.Threshold
		if opts.MinSimilarity > threshold {
			threshold = opts.MinSimilarity
		}

		qv := queryEmbeddings[stage.Dimension]
		var scored []models.SearchResult
		for _, row := range stored {
			// After stage 1, only candidates surviving the previous stage
			// are compared; items lacking this resolution simply drop out
			if survivors != nil && !survivors[row.ItemID] {
				continue
			}
			sim := vector.CosineSimilarity(qv, row.Vector)
			if sim < threshold {
				continue
			}
			scored = append(scored, models.SearchResult{
				ItemID:     row.ItemID,
				Similarity: sim,
				Dimension:  stage.Dimension,
			})
		}

		// Stable sort keeps catalog order for equal scores, so repeated
		// queries against unchanged data are reproducible
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Similarity > scored[j].Similarity
		})
		if len(scored) > stage.CandidateCount {
			scored = scored[:stage.CandidateCount]
		}

		resp.StagesExecuted++
		resp.StageLatencies = append(resp.StageLatencies, time.Since(stageStart))
		resp.Results = scored

		if len(scored) == 0 {
			break
		}

		if opts.EarlyTermination && scored[0].Similarity >= confidence {
			resp.EarlyTerminated = true
			break
		}

		survivors = make(map[string]bool, len(scored))
		for _, r := range scored {
			survivors[r.ItemID] = true
		}
	}

	if opts.MaxResults > 0 && len(resp.Results) > opts.MaxResults {
		resp.Results = resp.Results[:opts.MaxResults]
	}

	return resp, nil
}
