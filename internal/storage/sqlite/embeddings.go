// ABOUTME: Multi-resolution embedding persistence for SQLite
// ABOUTME: Stores vectors as BLOB columns, one column per resolution
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
)

// ResolutionColumns maps each supported resolution to its vector column.
// Dimensions outside this set cannot be persisted.
var ResolutionColumns = map[int]string{
	256:  "embedding_256",
	512:  "embedding_512",
	1024: "embedding_1024",
	2048: "embedding_2048",
}

// Store handles multi-resolution embedding persistence
type Store struct {
	db *DB
}

// NewStore creates a new embedding Store
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Save persists a multi-resolution embedding, superseding any prior record
// for the same item. All resolutions land in one row atomically.
func (s *Store) Save(emb *models.MultiResolutionEmbedding) error {
	if err := emb.Validate(); err != nil {
		return fmt.Errorf("invalid embedding: %w", err)
	}

	blobs := make(map[int][]byte, len(emb.Embeddings))
	for dim, vec := range emb.Embeddings {
		if _, ok := ResolutionColumns[dim]; !ok {
			return fmt.Errorf("item %s: unsupported resolution %d", emb.ItemID, dim)
		}
		blobs[dim] = vectorToBlob(vec)
	}

	var qualityJSON []byte
	if len(emb.Metadata.QualityScores) > 0 {
		var err error
		qualityJSON, err = json.Marshal(emb.Metadata.QualityScores)
		if err != nil {
			return fmt.Errorf("item %s: marshaling quality scores: %w", emb.ItemID, err)
		}
	}

	updatedAt := emb.Metadata.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO item_embeddings (
			item_id, embedding_256, embedding_512, embedding_1024, embedding_2048,
			embedding_model, generation_method, source_text, source_hash,
			quality_scores, generation_time_ms, api_cost_cents, tokens_used,
			embedding_version, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			embedding_256 = excluded.embedding_256,
			embedding_512 = excluded.embedding_512,
			embedding_1024 = excluded.embedding_1024,
			embedding_2048 = excluded.embedding_2048,
			embedding_model = excluded.embedding_model,
			generation_method = excluded.generation_method,
			source_text = excluded.source_text,
			source_hash = excluded.source_hash,
			quality_scores = excluded.quality_scores,
			generation_time_ms = excluded.generation_time_ms,
			api_cost_cents = excluded.api_cost_cents,
			tokens_used = excluded.tokens_used,
			embedding_version = excluded.embedding_version,
			updated_at = excluded.updated_at
	`,
		emb.ItemID,
		nullBlob(blobs[256]), nullBlob(blobs[512]), nullBlob(blobs[1024]), nullBlob(blobs[2048]),
		emb.Metadata.Model, emb.Metadata.GenerationMethod,
		emb.Metadata.SourceText, emb.Metadata.SourceHash,
		nullBlob(qualityJSON), emb.Metadata.GenerationTimeMS,
		emb.Metadata.APICostCents, emb.Metadata.TokensUsed,
		emb.Metadata.EmbeddingVersion, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving embedding for item %s: %w", emb.ItemID, err)
	}
	return nil
}

// GetByItemID retrieves an embedding record, or nil when absent
func (s *Store) GetByItemID(itemID string) (*models.MultiResolutionEmbedding, error) {
	return s.getWhere("item_id = ?", itemID)
}

// GetBySourceHash retrieves an embedding record by content hash, or nil when
// absent. This is the persistent cache-tier lookup.
func (s *Store) GetBySourceHash(hash string) (*models.MultiResolutionEmbedding, error) {
	return s.getWhere("source_hash = ?", hash)
}

func (s *Store) getWhere(where string, arg interface{}) (*models.MultiResolutionEmbedding, error) {
	row := s.db.QueryRow(`
		SELECT item_id, embedding_256, embedding_512, embedding_1024, embedding_2048,
			embedding_model, generation_method, source_text, source_hash,
			quality_scores, generation_time_ms, api_cost_cents, tokens_used,
			embedding_version, updated_at
		FROM item_embeddings
		WHERE `+where, arg)

	var (
		emb         models.MultiResolutionEmbedding
		blob256     []byte
		blob512     []byte
		blob1024    []byte
		blob2048    []byte
		qualityJSON sql.NullString
	)

	err := row.Scan(
		&emb.ItemID, &blob256, &blob512, &blob1024, &blob2048,
		&emb.Metadata.Model, &emb.Metadata.GenerationMethod,
		&emb.Metadata.SourceText, &emb.Metadata.SourceHash,
		&qualityJSON, &emb.Metadata.GenerationTimeMS,
		&emb.Metadata.APICostCents, &emb.Metadata.TokensUsed,
		&emb.Metadata.EmbeddingVersion, &emb.Metadata.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	emb.Embeddings = make(map[int][]float64)
	for dim, blob := range map[int][]byte{256: blob256, 512: blob512, 1024: blob1024, 2048: blob2048} {
		if len(blob) > 0 {
			emb.Embeddings[dim] = blobToVector(blob)
		}
	}

	if qualityJSON.Valid && qualityJSON.String != "" {
		scores := make(map[int]float64)
		if err := json.Unmarshal([]byte(qualityJSON.String), &scores); err != nil {
			return nil, fmt.Errorf("item %s: parsing quality scores: %w", emb.ItemID, err)
		}
		emb.Metadata.QualityScores = scores
	}

	return &emb, nil
}

// VectorsAt returns all stored vectors at a resolution in catalog (rowid)
// order. Items lacking that resolution are omitted.
func (s *Store) VectorsAt(dim int) ([]models.ItemVector, error) {
	col, ok := ResolutionColumns[dim]
	if !ok {
		return nil, fmt.Errorf("unsupported resolution %d", dim)
	}

	rows, err := s.db.Query(`
		SELECT item_id, ` + col + `
		FROM item_embeddings
		WHERE ` + col + ` IS NOT NULL
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vectors at dimension %d: %w", dim, err)
	}
	defer func() { _ = rows.Close() }()

	var vectors []models.ItemVector
	for rows.Next() {
		var (
			itemID string
			blob   []byte
		)
		if err := rows.Scan(&itemID, &blob); err != nil {
			return nil, err
		}
		vectors = append(vectors, models.ItemVector{ItemID: itemID, Vector: blobToVector(blob)})
	}

	return vectors, rows.Err()
}

// Count returns the number of stored embedding records
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM item_embeddings").Scan(&n)
	return n, err
}

// CountAt returns the number of items with a vector at a resolution
func (s *Store) CountAt(dim int) (int, error) {
	col, ok := ResolutionColumns[dim]
	if !ok {
		return 0, fmt.Errorf("unsupported resolution %d", dim)
	}
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM item_embeddings WHERE " + col + " IS NOT NULL").Scan(&n)
	return n, err
}

// Delete removes an embedding record by item ID
func (s *Store) Delete(itemID string) error {
	_, err := s.db.Exec("DELETE FROM item_embeddings WHERE item_id = ?", itemID)
	return err
}

// nullBlob maps an empty blob to NULL
func nullBlob(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

// vectorToBlob converts a float64 slice to a binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to a float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}
