// ABOUTME: Tests for multi-resolution embedding storage
// ABOUTME: Verifies persistence, hash lookup, catalog ordering, and supersede
package sqlite

import (
	"math"
	"testing"
	"time"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
)

func testEmbedding(itemID, hash string, dims ...int) *models.MultiResolutionEmbedding {
	embeddings := make(map[int][]float64)
	for _, d := range dims {
		vec := make([]float64, d)
		for i := range vec {
			vec[i] = float64(i) / float64(d)
		}
		embeddings[d] = vec
	}
	return &models.MultiResolutionEmbedding{
		ItemID:     itemID,
		Embeddings: embeddings,
		Metadata: models.EmbeddingMetadata{
			SourceText:       "woody aromatic | " + itemID,
			SourceHash:       hash,
			Model:            "text-embedding-3-large",
			GenerationMethod: models.MethodTruncation,
			QualityScores:    map[int]float64{256: 0.97, 512: 0.99},
			GenerationTimeMS: 120,
			TokensUsed:       42,
			APICostCents:     0.005,
			EmbeddingVersion: models.EmbeddingVersion,
			UpdatedAt:        time.Now(),
		},
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewStore(db)

	emb := testEmbedding("frag_1", "hash_1", 256, 512)
	if err := store.Save(emb); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.GetByItemID("frag_1")
	if err != nil {
		t.Fatalf("GetByItemID() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByItemID() returned nil")
	}

	if len(got.Embeddings) != 2 {
		t.Errorf("got %d resolutions, want 2", len(got.Embeddings))
	}
	for _, dim := range []int{256, 512} {
		vec := got.Embeddings[dim]
		if len(vec) != dim {
			t.Fatalf("resolution %d has length %d", dim, len(vec))
		}
		for i, v := range vec {
			expected := float64(i) / float64(dim)
			if math.Abs(v-expected) > 1e-12 {
				t.Errorf("vec[%d] = %v, want %v", i, v, expected)
				break
			}
		}
	}

	if got.Metadata.SourceHash != "hash_1" {
		t.Errorf("SourceHash = %q, want hash_1", got.Metadata.SourceHash)
	}
	if got.Metadata.GenerationMethod != models.MethodTruncation {
		t.Errorf("GenerationMethod = %q, want truncation", got.Metadata.GenerationMethod)
	}
	if got.Metadata.QualityScores[256] != 0.97 {
		t.Errorf("QualityScores[256] = %v, want 0.97", got.Metadata.QualityScores[256])
	}
	if got.Metadata.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", got.Metadata.TokensUsed)
	}
	if got.Metadata.EmbeddingVersion != models.EmbeddingVersion {
		t.Errorf("EmbeddingVersion = %d, want %d", got.Metadata.EmbeddingVersion, models.EmbeddingVersion)
	}
}

func TestStoreGetBySourceHash(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewStore(db)
	if err := store.Save(testEmbedding("frag_1", "hash_abc", 256)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.GetBySourceHash("hash_abc")
	if err != nil {
		t.Fatalf("GetBySourceHash() error = %v", err)
	}
	if got == nil || got.ItemID != "frag_1" {
		t.Fatalf("GetBySourceHash() = %+v, want frag_1", got)
	}

	miss, err := store.GetBySourceHash("no_such_hash")
	if err != nil {
		t.Fatalf("GetBySourceHash() miss error = %v", err)
	}
	if miss != nil {
		t.Error("GetBySourceHash() for unknown hash should return nil")
	}
}

func TestStoreSupersede(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewStore(db)
	if err := store.Save(testEmbedding("frag_1", "hash_old", 256)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Changed source text produces a new hash; the record is superseded
	if err := store.Save(testEmbedding("frag_1", "hash_new", 256, 512)); err != nil {
		t.Fatalf("Save() supersede error = %v", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1 after supersede", count)
	}

	got, err := store.GetByItemID("frag_1")
	if err != nil {
		t.Fatalf("GetByItemID() error = %v", err)
	}
	if got.Metadata.SourceHash != "hash_new" {
		t.Errorf("SourceHash = %q, want hash_new", got.Metadata.SourceHash)
	}

	// The old hash must no longer resolve
	old, err := store.GetBySourceHash("hash_old")
	if err != nil {
		t.Fatalf("GetBySourceHash(hash_old) error = %v", err)
	}
	if old != nil {
		t.Error("superseded hash should not resolve")
	}
}

func TestStoreVectorsAt(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewStore(db)

	// frag_b lacks the 512 resolution
	if err := store.Save(testEmbedding("frag_a", "h_a", 256, 512)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(testEmbedding("frag_b", "h_b", 256)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(testEmbedding("frag_c", "h_c", 256, 512)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	at256, err := store.VectorsAt(256)
	if err != nil {
		t.Fatalf("VectorsAt(256) error = %v", err)
	}
	if len(at256) != 3 {
		t.Fatalf("VectorsAt(256) returned %d rows, want 3", len(at256))
	}
	// Catalog (insertion) order
	wantOrder := []string{"frag_a", "frag_b", "frag_c"}
	for i, w := range wantOrder {
		if at256[i].ItemID != w {
			t.Errorf("at256[%d] = %s, want %s", i, at256[i].ItemID, w)
		}
	}

	at512, err := store.VectorsAt(512)
	if err != nil {
		t.Fatalf("VectorsAt(512) error = %v", err)
	}
	if len(at512) != 2 {
		t.Errorf("VectorsAt(512) returned %d rows, want 2", len(at512))
	}

	if _, err := store.VectorsAt(123); err == nil {
		t.Error("VectorsAt(123) should reject unsupported resolution")
	}

	n512, err := store.CountAt(512)
	if err != nil {
		t.Fatalf("CountAt(512) error = %v", err)
	}
	if n512 != 2 {
		t.Errorf("CountAt(512) = %d, want 2", n512)
	}
}

func TestStoreRejectsInvalidEmbedding(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewStore(db)

	// Length invariant violation
	bad := testEmbedding("frag_x", "h_x", 256)
	bad.Embeddings[256] = bad.Embeddings[256][:100]
	if err := store.Save(bad); err == nil {
		t.Error("Save() with wrong vector length should fail")
	}

	// Unsupported resolution
	odd := testEmbedding("frag_y", "h_y")
	odd.Embeddings = map[int][]float64{300: make([]float64, 300)}
	if err := store.Save(odd); err == nil {
		t.Error("Save() with unsupported resolution should fail")
	}
}

func TestStoreDelete(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewStore(db)
	if err := store.Save(testEmbedding("frag_1", "h1", 256)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete("frag_1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := store.GetByItemID("frag_1")
	if err != nil {
		t.Fatalf("GetByItemID() after delete error = %v", err)
	}
	if got != nil {
		t.Error("GetByItemID() should return nil after delete")
	}
}
