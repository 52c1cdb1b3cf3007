// ABOUTME: Two-tier embedding cache keyed by content hash
// ABOUTME: Bounded in-process map in front of a persistent store tier
package cache

import (
	"log"
	"sync"
	"time"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
)

// PersistentTier is the second cache tier, typically the SQLite store.
// A nil embedding with a nil error means "not cached".
type PersistentTier interface {
	GetBySourceHash(hash string) (*models.MultiResolutionEmbedding, error)
}

// Entry is one cached embedding with its insertion time
type Entry struct {
	Embedding *models.MultiResolutionEmbedding
	StoredAt  time.Time
}

// IsStale reports whether the entry has outlived the freshness window.
// Staleness is advisory: stale entries are returned, not evicted, and the
// caller decides whether to regenerate.
func (e *Entry) IsStale(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(e.StoredAt) > ttl
}

// Cache is the in-process tier: a bounded map with oldest-insertion-order
// eviction, backed by an optional persistent tier. Entries are immutable; a
// changed source text hashes to a new key instead of updating in place.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*Entry
	order      []string
	maxEntries int
	ttl        time.Duration
	persistent PersistentTier
}

// New creates a cache holding at most maxEntries in process. persistent may
// be nil for a purely in-process cache.
func New(maxEntries int, ttl time.Duration, persistent PersistentTier) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &Cache{
		entries:    make(map[string]*Entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		persistent: persistent,
	}
}

// Get looks up an embedding by content hash, checking the in-process tier
// first and falling back to the persistent tier. A persistent-tier read
// failure degrades to a miss: the cache is best-effort and the caller
// regenerates.
func (c *Cache) Get(hash string) (*Entry, bool) {
	c.mu.Lock()
	if e, ok := c.entries[hash]; ok {
		c.mu.Unlock()
		return e, true
	}
	c.mu.Unlock()

	if c.persistent == nil {
		return nil, false
	}

	emb, err := c.persistent.GetBySourceHash(hash)
	if err != nil {
		log.Printf("cache: persistent tier read failed for %s, treating as miss: %v", hash, err)
		return nil, false
	}
	if emb == nil {
		return nil, false
	}

	// Promote to the in-process tier
	e := &Entry{Embedding: emb, StoredAt: emb.Metadata.UpdatedAt}
	c.mu.Lock()
	c.insertLocked(hash, e)
	c.mu.Unlock()

	return e, true
}

// Put inserts an embedding into the in-process tier. Persistence of the
// record itself is the generator's store write; the persistent tier reads
// from the same rows.
func (c *Cache) Put(hash string, emb *models.MultiResolutionEmbedding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertLocked(hash, &Entry{Embedding: emb, StoredAt: time.Now()})
}

// Len returns the current in-process entry count
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// IsStale reports whether an entry is past the configured freshness window
func (c *Cache) IsStale(e *Entry) bool {
	return e.IsStale(c.ttl, time.Now())
}

// insertLocked adds an entry and evicts the oldest 10% once the tier
// exceeds its ceiling. Callers must hold c.mu.
func (c *Cache) insertLocked(hash string, e *Entry) {
	if _, exists := c.entries[hash]; !exists {
		c.order = append(c.order, hash)
	}
	c.entries[hash] = e

	if len(c.entries) <= c.maxEntries {
		return
	}

	evict := len(c.entries) / 10
	if evict < 1 {
		evict = 1
	}
	for i := 0; i < evict && len(c.order) > 0; i++ {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}
