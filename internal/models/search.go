// ABOUTME: Search models for progressive multi-stage similarity search
// ABOUTME: Defines SearchStage plans, results, and stored vector rows
package models

import (
	"fmt"
	"time"
)

// SearchStage describes one stage of a progressive search plan: which
// resolution to compare at, how many candidates survive, and the minimum
// similarity to keep a candidate at all.
type SearchStage struct {
	Dimension      int     `json:"dimension"`
	CandidateCount int     `json:"candidate_count"`
	Threshold      float64 `json:"threshold"`
}

// ValidateStages checks a search plan: non-empty, strictly increasing
// dimensions, positive retention counts, thresholds within cosine range.
func ValidateStages(stages []SearchStage) error {
	if len(stages) == 0 {
		return fmt.Errorf("search plan has no stages")
	}
	for i, s := range stages {
		if s.Dimension <= 0 {
			return fmt.Errorf("stage %d: dimension must be positive, got %d", i+1, s.Dimension)
		}
		if s.CandidateCount <= 0 {
			return fmt.Errorf("stage %d: candidate count must be positive, got %d", i+1, s.CandidateCount)
		}
		if s.Threshold < -1 || s.Threshold > 1 {
			return fmt.Errorf("stage %d: threshold must be in [-1, 1], got %f", i+1, s.Threshold)
		}
		if i > 0 && s.Dimension <= stages[i-1].Dimension {
			return fmt.Errorf("stage %d: dimension %d not greater than previous %d", i+1, s.Dimension, stages[i-1].Dimension)
		}
	}
	return nil
}

// SearchResult is one ranked item with the similarity score it received and
// the resolution that produced the score
type SearchResult struct {
	ItemID     string  `json:"item_id"`
	Similarity float64 `json:"similarity"`
	Dimension  int     `json:"dimension"`
}

// SearchResponse carries the ranked results plus execution metadata
type SearchResponse struct {
	Results         []SearchResult  `json:"results"`
	StagesExecuted  int             `json:"stages_executed"`
	EarlyTerminated bool            `json:"early_terminated"`
	StageLatencies  []time.Duration `json:"stage_latencies"`
}

// ItemVector is one stored vector row at a single resolution, in catalog order
type ItemVector struct {
	ItemID string
	Vector []float64
}
