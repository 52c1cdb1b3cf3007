// ABOUTME: Tests for the two-tier embedding cache
// ABOUTME: Verifies lookup, eviction order, staleness, and tier promotion
package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
)

func cachedEmbedding(itemID string) *models.MultiResolutionEmbedding {
	return &models.MultiResolutionEmbedding{
		ItemID:     itemID,
		Embeddings: map[int][]float64{4: {1, 0, 0, 0}},
		Metadata: models.EmbeddingMetadata{
			SourceHash: "hash_" + itemID,
			UpdatedAt:  time.Now(),
		},
	}
}

// stubTier is a PersistentTier backed by a map, optionally failing
type stubTier struct {
	entries map[string]*models.MultiResolutionEmbedding
	err     error
	reads   int
}

func (s *stubTier) GetBySourceHash(hash string) (*models.MultiResolutionEmbedding, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return s.entries[hash], nil
}

func TestCachePutGet(t *testing.T) {
	c := New(10, time.Hour, nil)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache should miss")
	}

	emb := cachedEmbedding("frag_1")
	c.Put("h1", emb)

	entry, ok := c.Get("h1")
	if !ok {
		t.Fatal("Get() should hit after Put()")
	}
	if entry.Embedding.ItemID != "frag_1" {
		t.Errorf("ItemID = %s, want frag_1", entry.Embedding.ItemID)
	}
	if c.IsStale(entry) {
		t.Error("fresh entry reported stale")
	}
}

func TestCacheEvictsOldestTenPercent(t *testing.T) {
	c := New(20, time.Hour, nil)

	for i := 0; i < 21; i++ {
		c.Put(fmt.Sprintf("h%02d", i), cachedEmbedding(fmt.Sprintf("frag_%02d", i)))
	}

	// Crossing the ceiling evicts the oldest 10% (2 of 21)
	if got := c.Len(); got != 19 {
		t.Errorf("Len() = %d, want 19 after eviction", got)
	}
	if _, ok := c.Get("h00"); ok {
		t.Error("oldest entry h00 should be evicted")
	}
	if _, ok := c.Get("h01"); ok {
		t.Error("second-oldest entry h01 should be evicted")
	}
	if _, ok := c.Get("h20"); !ok {
		t.Error("newest entry h20 should survive eviction")
	}
}

func TestCacheStaleness(t *testing.T) {
	e := &Entry{StoredAt: time.Now().Add(-25 * time.Hour)}
	if !e.IsStale(24*time.Hour, time.Now()) {
		t.Error("25h-old entry should be stale with 24h window")
	}
	if e.IsStale(0, time.Now()) {
		t.Error("zero TTL disables staleness")
	}

	// Stale entries are still returned; staleness is the caller's decision
	c := New(10, time.Millisecond, nil)
	c.Put("h1", cachedEmbedding("frag_1"))
	time.Sleep(5 * time.Millisecond)

	entry, ok := c.Get("h1")
	if !ok {
		t.Fatal("stale entry must still be returned")
	}
	if !c.IsStale(entry) {
		t.Error("entry should be stale")
	}
}

func TestCachePersistentTierPromotion(t *testing.T) {
	emb := cachedEmbedding("frag_db")
	tier := &stubTier{entries: map[string]*models.MultiResolutionEmbedding{"h_db": emb}}
	c := New(10, time.Hour, tier)

	entry, ok := c.Get("h_db")
	if !ok {
		t.Fatal("Get() should hit the persistent tier")
	}
	if entry.Embedding.ItemID != "frag_db" {
		t.Errorf("ItemID = %s, want frag_db", entry.Embedding.ItemID)
	}

	// Second read is served from the in-process tier
	if _, ok := c.Get("h_db"); !ok {
		t.Fatal("promoted entry should hit tier 1")
	}
	if tier.reads != 1 {
		t.Errorf("persistent tier reads = %d, want 1 after promotion", tier.reads)
	}
}

func TestCachePersistentTierFailureIsMiss(t *testing.T) {
	tier := &stubTier{err: errors.New("database is locked")}
	c := New(10, time.Hour, tier)

	if _, ok := c.Get("h1"); ok {
		t.Error("persistent tier failure must degrade to a miss")
	}
}
