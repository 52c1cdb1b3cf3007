// ABOUTME: Matryoshka embedding generator producing multi-resolution vectors
// ABOUTME: One provider call truncated into several quality-scored resolutions
package matryoshka

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/cache"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/config"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/llm"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/ratelimit"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/vector"
)

// apiCostCentsPerToken estimates spend for text-embedding-3-large
// ($0.13 per million tokens)
const apiCostCentsPerToken = 13.0 / 1_000_000

// Store persists generated embeddings. Implemented by the SQLite store.
type Store interface {
	Save(emb *models.MultiResolutionEmbedding) error
}

// Event is emitted to the observer after each generation attempt
type Event struct {
	EventID       string
	ItemID        string
	SourceHash    string
	Dimensions    []int
	QualityScores map[int]float64
	Latency       time.Duration
	Cached        bool
	Err           error
}

// Observer receives generation events for external monitoring. It is
// decoupled from control flow: the generation result is returned
// synchronously regardless.
type Observer func(Event)

// Result is the outcome of one successful generation
type Result struct {
	Embedding *models.MultiResolutionEmbedding
	Cached    bool
	Quality   map[int]models.QualityMetrics
}

// Generator orchestrates provider calls, truncation, quality validation,
// and persistence. All collaborators are constructor-injected; lifecycle is
// owned by the caller.
type Generator struct {
	cfg      *config.Config
	provider llm.EmbeddingProvider
	store    Store
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
	observer Observer
}

// New creates a Generator. cache and observer may be nil.
func New(cfg *config.Config, provider llm.EmbeddingProvider, store Store, c *cache.Cache, limiter *ratelimit.Limiter, observer Observer) (*Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	return &Generator{
		cfg:      cfg,
		provider: provider,
		store:    store,
		cache:    c,
		limiter:  limiter,
		observer: observer,
	}, nil
}

// Generate produces a multi-resolution embedding for one catalog item.
// Identical source content is served from cache without a provider call.
func (g *Generator) Generate(ctx context.Context, itemID string, content models.ItemContent) (*Result, error) {
	start := time.Now()
	sourceText := BuildSourceText(content)
	if sourceText == "" {
		return nil, fmt.Errorf("item %s: no content to embed", itemID)
	}
	hash := ContentHash(sourceText)

	if g.cfg.CacheEnabled && g.cache != nil {
		// A stale hit falls through to regeneration; the freshness window
		// is the refresh policy for unchanged content
		if entry, ok := g.cache.Get(hash); ok && !g.cache.IsStale(entry) {
			result := &Result{Embedding: entry.Embedding, Cached: true}
			g.emit(Event{
				EventID:    uuid.New().String(),
				ItemID:     itemID,
				SourceHash: hash,
				Dimensions: entry.Embedding.Dimensions(),
				Latency:    time.Since(start),
				Cached:     true,
			})
			return result, nil
		}
	}

	result, err := g.generateFresh(ctx, itemID, sourceText, hash, start)

	event := Event{
		EventID:    uuid.New().String(),
		ItemID:     itemID,
		SourceHash: hash,
		Latency:    time.Since(start),
		Err:        err,
	}
	if result != nil {
		event.Dimensions = result.Embedding.Dimensions()
		event.QualityScores = result.Embedding.Metadata.QualityScores
	}
	g.emit(event)

	return result, err
}

// GenerateQuery produces a query-side multi-resolution embedding without
// persisting anything. The returned map feeds the progressive search engine.
func (g *Generator) GenerateQuery(ctx context.Context, text string) (map[int][]float64, error) {
	if NormalizeText(text) == "" {
		return nil, fmt.Errorf("query text is empty")
	}

	if err := g.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("query: acquiring rate limit token: %w", err)
	}

	res, err := g.provider.Embed(ctx, text, g.cfg.MaxTargetDimension())
	if err != nil {
		return nil, fmt.Errorf("query: embedding provider: %w", err)
	}

	embeddings, _ := g.truncateAll(res.Vector, "query")
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("query: no target dimension fits provider output length %d", len(res.Vector))
	}
	return embeddings, nil
}

// BatchItem is one item in a batch generation request
type BatchItem struct {
	ItemID  string
	Content models.ItemContent
}

// BatchResult pairs one batch item with its outcome. A failed item never
// blocks the rest of the batch.
type BatchResult struct {
	ItemID string
	Result *Result
	Err    error
}

// GenerateBatch processes items with bounded concurrency (config BatchSize).
// Results are returned in input order.
func (g *Generator) GenerateBatch(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))
	sem := make(chan struct{}, g.cfg.BatchSize)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := g.Generate(ctx, item.ItemID, item.Content)
			results[i] = BatchResult{ItemID: item.ItemID, Result: res, Err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}

// generateFresh runs the full pipeline: rate-limited provider call,
// truncation, quality gate, persistence, cache insert. Nothing is written
// until the quality gate passes, so cancellation or rejection never leaves
// partial state.
func (g *Generator) generateFresh(ctx context.Context, itemID, sourceText, hash string, start time.Time) (*Result, error) {
	if err := g.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("item %s: acquiring rate limit token: %w", itemID, err)
	}

	res, err := g.provider.Embed(ctx, sourceText, g.cfg.MaxTargetDimension())
	if err != nil {
		return nil, fmt.Errorf("item %s: embedding provider: %w", itemID, err)
	}
	if len(res.Vector) == 0 {
		return nil, fmt.Errorf("item %s: provider returned empty vector", itemID)
	}

	embeddings, dims := g.truncateAll(res.Vector, itemID)
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("item %s: no target dimension fits provider output length %d", itemID, len(res.Vector))
	}

	var (
		quality       map[int]models.QualityMetrics
		qualityScores map[int]float64
	)
	if g.cfg.QualityValidation {
		quality = computeQuality(embeddings, res.Vector)
		qualityScores = make(map[int]float64, len(quality))
		for dim, q := range quality {
			qualityScores[dim] = clamp01(q.SimilarityToFull)
		}

		// The hard gate: a degenerate lowest-resolution truncation rejects
		// the whole generation before anything reaches storage
		smallest := dims[0]
		if sim := quality[smallest].SimilarityToFull; sim < g.cfg.QualityGateThreshold {
			return nil, &QualityGateError{
				ItemID:     itemID,
				Dimension:  smallest,
				Similarity: sim,
				Threshold:  g.cfg.QualityGateThreshold,
			}
		}
	}

	emb := &models.MultiResolutionEmbedding{
		ItemID:     itemID,
		Embeddings: embeddings,
		Metadata: models.EmbeddingMetadata{
			SourceText:       sourceText,
			SourceHash:       hash,
			Model:            g.provider.Model(),
			GenerationMethod: models.MethodTruncation,
			QualityScores:    qualityScores,
			GenerationTimeMS: time.Since(start).Milliseconds(),
			TokensUsed:       res.TokensUsed,
			APICostCents:     float64(res.TokensUsed) * apiCostCentsPerToken,
			EmbeddingVersion: models.EmbeddingVersion,
			UpdatedAt:        time.Now(),
		},
	}

	if err := g.store.Save(emb); err != nil {
		return nil, fmt.Errorf("item %s: persisting embedding: %w", itemID, err)
	}

	if g.cfg.CacheEnabled && g.cache != nil {
		g.cache.Put(hash, emb)
	}

	return &Result{Embedding: emb, Quality: quality}, nil
}

// truncateAll produces a prefix truncation per valid target dimension,
// normalizing when configured. Target dimensions the schema cannot hold,
// or exceeding the provider output, are skipped with a warning, not an
// error. Returns the embeddings and the produced dimensions in ascending
// order.
func (g *Generator) truncateAll(full []float64, itemID string) (map[int][]float64, []int) {
	embeddings := make(map[int][]float64)
	var dims []int

	for _, dim := range g.cfg.TargetDimensions {
		if !models.IsSupportedResolution(dim) {
			log.Printf("matryoshka: item %s: skipping dimension %d, no storage column for it", itemID, dim)
			continue
		}
		if dim > len(full) {
			log.Printf("matryoshka: item %s: skipping dimension %d, provider output is %d", itemID, dim, len(full))
			continue
		}
		truncated := vector.Truncate(full, dim)
		if g.cfg.Normalize {
			vector.Normalize(truncated)
		}
		embeddings[dim] = truncated
		dims = append(dims, dim)
	}

	return embeddings, dims
}

func (g *Generator) emit(event Event) {
	if g.observer != nil {
		g.observer(event)
	}
}
