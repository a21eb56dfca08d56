// Package mock provides a test double for storage.DocumentStore.
//
// The store keeps every upserted chunk in memory and allows behavior
// injection via function fields, mirroring the doubles in ai/mock:
//
//	store := mock.NewStore()
//	store.UpsertChunksFunc = func(ctx context.Context, chunks []core.EmbeddedChunk) error {
//	    return errors.New("batch rejected")
//	}
package mock

import (
	"context"
	"sync"

	"github.com/poiesic/harvester/core"
	"github.com/poiesic/harvester/storage"
)

// Store is an in-memory test double for storage.DocumentStore.
// Safe for concurrent use.
type Store struct {
	// UpsertChunksFunc is called by UpsertChunks if set.
	UpsertChunksFunc func(ctx context.Context, chunks []core.EmbeddedChunk) error

	// UpsertChunkFunc is called by UpsertChunk if set.
	UpsertChunkFunc func(ctx context.Context, chunk core.EmbeddedChunk) error

	// MatchDocumentsFunc is called by MatchDocuments if set.
	MatchDocumentsFunc func(ctx context.Context, embedding []float32, threshold float32, count int) ([]storage.SearchMatch, error)

	mu         sync.Mutex
	chunks     []core.EmbeddedChunk
	batchCalls int
	closed     bool
}

var _ storage.DocumentStore = (*Store)(nil)

// NewStore creates an empty mock store.
// Note: returns concrete type to allow test assertions.
func NewStore() *Store {
	return &Store{}
}

// UpsertChunks records the batch, or delegates to UpsertChunksFunc.
func (s *Store) UpsertChunks(ctx context.Context, chunks []core.EmbeddedChunk) error {
	s.mu.Lock()
	s.batchCalls++
	fn := s.UpsertChunksFunc
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, chunks)
	}
	for _, chunk := range chunks {
		s.store(chunk)
	}
	return nil
}

// UpsertChunk records one chunk, or delegates to UpsertChunkFunc.
func (s *Store) UpsertChunk(ctx context.Context, chunk core.EmbeddedChunk) error {
	if s.UpsertChunkFunc != nil {
		return s.UpsertChunkFunc(ctx, chunk)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeLocked(chunk)
	return nil
}

func (s *Store) store(chunk core.EmbeddedChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeLocked(chunk)
}

func (s *Store) storeLocked(chunk core.EmbeddedChunk) {
	// Replace on the same uniqueness key the real store enforces.
	hash := core.ContentHash(chunk.Text)
	for i, existing := range s.chunks {
		if core.ContentHash(existing.Text) == hash &&
			existing.SourceURL == chunk.SourceURL &&
			existing.ChunkIndex == chunk.ChunkIndex {
			s.chunks[i] = chunk
			return
		}
	}
	s.chunks = append(s.chunks, chunk)
}

// MatchDocuments delegates to MatchDocumentsFunc, or returns nothing.
func (s *Store) MatchDocuments(ctx context.Context, embedding []float32, threshold float32, count int) ([]storage.SearchMatch, error) {
	if s.MatchDocumentsFunc != nil {
		return s.MatchDocumentsFunc(ctx, embedding, threshold, count)
	}
	return nil, nil
}

// IterateChunks streams the stored chunks in insertion order.
func (s *Store) IterateChunks(ctx context.Context, batchSize int, fn func(rows []storage.StoredChunk) error) error {
	s.mu.Lock()
	all := make([]storage.StoredChunk, len(s.chunks))
	for i, chunk := range s.chunks {
		all[i] = storage.StoredChunk{
			ID:         int64(i + 1),
			Content:    chunk.Text,
			SourceURL:  chunk.SourceURL,
			ChunkIndex: chunk.ChunkIndex,
			Metadata:   chunk.Metadata,
		}
	}
	s.mu.Unlock()

	for start := 0; start < len(all); start += batchSize {
		end := start + batchSize
		if end > len(all) {
			end = len(all)
		}
		if err := fn(all[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// UpdateEmbedding replaces a stored embedding by position ID.
func (s *Store) UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || int(id) > len(s.chunks) {
		return storage.ErrNotFound
	}
	s.chunks[id-1].Embedding = embedding
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Chunks returns a copy of every stored chunk for assertions.
func (s *Store) Chunks() []core.EmbeddedChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.EmbeddedChunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// BatchCalls reports how many times UpsertChunks was invoked.
func (s *Store) BatchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchCalls
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
