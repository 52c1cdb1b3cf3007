// ABOUTME: SQLite schema for multi-resolution embedding storage
// ABOUTME: One row per catalog item, one vector column per resolution
package sqlite

// Schema contains all SQL statements for database initialization.
// Vector columns hold little-endian float64 blobs; a NULL column means the
// item was never generated at that resolution.
const Schema = `
CREATE TABLE IF NOT EXISTS item_embeddings (
    item_id TEXT PRIMARY KEY,
    embedding_256 BLOB,
    embedding_512 BLOB,
    embedding_1024 BLOB,
    embedding_2048 BLOB,
    embedding_model TEXT NOT NULL,
    generation_method TEXT NOT NULL DEFAULT 'truncation',
    source_text TEXT NOT NULL,
    source_hash TEXT NOT NULL,
    quality_scores TEXT,
    generation_time_ms INTEGER DEFAULT 0,
    api_cost_cents REAL DEFAULT 0,
    tokens_used INTEGER DEFAULT 0,
    embedding_version INTEGER NOT NULL DEFAULT 1,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_item_embeddings_hash ON item_embeddings(source_hash);
CREATE INDEX IF NOT EXISTS idx_item_embeddings_model ON item_embeddings(embedding_model);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
