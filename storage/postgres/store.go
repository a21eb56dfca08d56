// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package postgres implements storage.DocumentStore on PostgreSQL with
// the pgvector extension. Open bootstraps the schema, so a fresh
// database needs nothing beyond the extension being installable.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/poiesic/harvester/core"
	"github.com/poiesic/harvester/storage"
)

const connectTimeout = 30 * time.Second

// Store implements storage.DocumentStore.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
	logger    *slog.Logger
}

var _ storage.DocumentStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open connects to the database, registers the pgvector codecs, and
// bootstraps the documents table with a vector column of the given
// dimension.
//
// Returns storage.DocumentStore interface to enforce abstraction.
func Open(ctx context.Context, dsn string, dimension int, opts ...Option) (storage.DocumentStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid vector dimension %d", dimension)
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &Store{
		pool:      pool,
		dimension: dimension,
		logger:    slog.Default().With("component", "postgres-store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.bootstrap(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return s, nil
}

func (s *Store) bootstrap(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
			id           BIGSERIAL PRIMARY KEY,
			content      TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			source_url   TEXT NOT NULL,
			chunk_index  INT NOT NULL,
			total_chunks INT NOT NULL,
			embedding    vector(%d),
			metadata     JSONB NOT NULL DEFAULT '{}',
			scraped_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.dimension),
		`CREATE UNIQUE INDEX IF NOT EXISTS documents_hash_source_chunk_idx
			ON documents (content_hash, source_url, chunk_index)`,
		`CREATE INDEX IF NOT EXISTS documents_source_url_idx
			ON documents (source_url)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const upsertColumns = `content, content_hash, source_url, chunk_index, total_chunks, embedding, metadata, scraped_at`

const upsertConflict = ` ON CONFLICT (content_hash, source_url, chunk_index) DO UPDATE SET
	content = EXCLUDED.content,
	total_chunks = EXCLUDED.total_chunks,
	embedding = EXCLUDED.embedding,
	metadata = EXCLUDED.metadata,
	scraped_at = EXCLUDED.scraped_at`

// UpsertChunks writes the batch in a single multi-row upsert.
func (s *Store) UpsertChunks(ctx context.Context, chunks []core.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO documents (%s) VALUES ", upsertColumns)

	args := make([]any, 0, len(chunks)*8)
	for i, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("%w: chunk %d of %s has %d, store wants %d",
				storage.ErrDimensionMismatch, chunk.ChunkIndex, chunk.SourceURL,
				len(chunk.Embedding), s.dimension)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
		args = append(args, chunkArgs(chunk)...)
	}
	sb.WriteString(upsertConflict)

	if _, err := s.pool.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("upsert %d chunks: %w", len(chunks), err)
	}
	s.logger.Debug("upserted chunk batch", "count", len(chunks))
	return nil
}

// UpsertChunk writes one embedded chunk.
func (s *Store) UpsertChunk(ctx context.Context, chunk core.EmbeddedChunk) error {
	if len(chunk.Embedding) != s.dimension {
		return fmt.Errorf("%w: got %d, store wants %d",
			storage.ErrDimensionMismatch, len(chunk.Embedding), s.dimension)
	}

	query := fmt.Sprintf("INSERT INTO documents (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)%s",
		upsertColumns, upsertConflict)
	if _, err := s.pool.Exec(ctx, query, chunkArgs(chunk)...); err != nil {
		return fmt.Errorf("upsert chunk %d of %s: %w", chunk.ChunkIndex, chunk.SourceURL, err)
	}
	return nil
}

func chunkArgs(chunk core.EmbeddedChunk) []any {
	scrapedAt := chunk.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}
	return []any{
		chunk.Text,
		core.ContentHash(chunk.Text),
		chunk.SourceURL,
		chunk.ChunkIndex,
		chunk.TotalChunks,
		pgvector.NewVector(chunk.Embedding),
		rowMetadata(chunk),
		scrapedAt,
	}
}

// rowMetadata folds the loader type into the metadata map. The loader
// type lives in metadata rather than a column so the table schema does
// not grow with every new record attribute.
func rowMetadata(chunk core.EmbeddedChunk) map[string]any {
	meta := make(map[string]any, len(chunk.Metadata)+1)
	for k, v := range chunk.Metadata {
		meta[k] = v
	}
	if chunk.LoaderType != "" {
		meta["loader_type"] = chunk.LoaderType
	}
	return meta
}

// MatchDocuments runs a cosine similarity search over the stored
// chunks.
func (s *Store) MatchDocuments(ctx context.Context, embedding []float32, threshold float32, count int) ([]storage.SearchMatch, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", storage.ErrInvalidQuery)
	}
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, store wants %d",
			storage.ErrDimensionMismatch, len(embedding), s.dimension)
	}

	const query = `
		SELECT id, content, source_url, chunk_index, metadata,
		       1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) > $2
		ORDER BY embedding <=> $1
		LIMIT $3`

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(embedding), threshold, count)
	if err != nil {
		return nil, fmt.Errorf("match documents: %w", err)
	}
	defer rows.Close()

	var matches []storage.SearchMatch
	for rows.Next() {
		var m storage.SearchMatch
		if err := rows.Scan(&m.ID, &m.Content, &m.SourceURL, &m.ChunkIndex, &m.Metadata, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match documents: %w", err)
	}
	return matches, nil
}

// IterateChunks pages through the table in ID order.
func (s *Store) IterateChunks(ctx context.Context, batchSize int, fn func(rows []storage.StoredChunk) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", storage.ErrInvalidQuery)
	}

	const query = `
		SELECT id, content, source_url, chunk_index, metadata
		FROM documents
		WHERE id > $1
		ORDER BY id
		LIMIT $2`

	lastID := int64(0)
	for {
		batch, err := s.fetchBatch(ctx, query, lastID, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		lastID = batch[len(batch)-1].ID
	}
}

func (s *Store) fetchBatch(ctx context.Context, query string, lastID int64, batchSize int) ([]storage.StoredChunk, error) {
	rows, err := s.pool.Query(ctx, query, lastID, batchSize)
	if err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	defer rows.Close()

	var batch []storage.StoredChunk
	for rows.Next() {
		var c storage.StoredChunk
		if err := rows.Scan(&c.ID, &c.Content, &c.SourceURL, &c.ChunkIndex, &c.Metadata); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		batch = append(batch, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return batch, nil
}

// UpdateEmbedding replaces one stored chunk's embedding.
func (s *Store) UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error {
	if len(embedding) != s.dimension {
		return fmt.Errorf("%w: got %d, store wants %d",
			storage.ErrDimensionMismatch, len(embedding), s.dimension)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id)
	if err != nil {
		return fmt.Errorf("update embedding %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chunk %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
