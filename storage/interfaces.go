package storage

import (
	"context"

	"github.com/poiesic/harvester/core"
)

// SearchMatch is one row of a similarity search result.
type SearchMatch struct {
	ID         int64
	Content    string
	SourceURL  string
	ChunkIndex int
	Metadata   map[string]any
	Similarity float32
}

// StoredChunk is a persisted document chunk as read back from the
// store, without its embedding.
type StoredChunk struct {
	ID         int64
	Content    string
	SourceURL  string
	ChunkIndex int
	Metadata   map[string]any
}

// DocumentStore persists embedded document chunks and answers
// similarity searches over them.
// Implementations must be thread-safe and support concurrent access.
type DocumentStore interface {
	// UpsertChunks writes a batch of embedded chunks in one statement.
	// A chunk that collides on (content_hash, source_url, chunk_index)
	// replaces the stored row. The whole batch fails or succeeds
	// together; callers wanting per-record recovery fall back to
	// UpsertChunk.
	UpsertChunks(ctx context.Context, chunks []core.EmbeddedChunk) error

	// UpsertChunk writes a single embedded chunk.
	UpsertChunk(ctx context.Context, chunk core.EmbeddedChunk) error

	// MatchDocuments returns stored chunks whose embedding similarity
	// to the query vector exceeds threshold, ordered by descending
	// similarity, up to count results.
	MatchDocuments(ctx context.Context, embedding []float32, threshold float32, count int) ([]SearchMatch, error)

	// IterateChunks streams every stored chunk to fn in batches of
	// batchSize, ordered by ID. Iteration stops at the first error
	// returned by fn.
	IterateChunks(ctx context.Context, batchSize int, fn func(rows []StoredChunk) error) error

	// UpdateEmbedding replaces the embedding of one stored chunk.
	// Returns ErrNotFound if no row has the given ID.
	UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}
