package core

import (
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash returns a deterministic hex digest of text content using BLAKE2b.
// Identical content always produces the same hash, which makes it suitable as
// part of the store's uniqueness key: re-ingesting an unchanged chunk upserts
// in place instead of creating a duplicate row.
func ContentHash(text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// RawDocument is one fetched page or element, produced by a loader and
// consumed exactly once by the document processor.
type RawDocument struct {
	Content  string
	Metadata map[string]any // source metadata (url, title, row number, ...)
}

// DocumentChunk is a bounded substring of a cleaned document with exact
// character offsets into that document's cleaned text.
//
// Invariant: CharEnd-CharStart == len(Text) and cleaned[CharStart:CharEnd] == Text,
// where cleaned is the cleaned content of the originating document.
// Chunks are never mutated after creation; reprocessing a URL creates a new
// generation of chunks rather than updating existing ones.
type DocumentChunk struct {
	Text        string
	SourceURL   string
	ChunkIndex  int // 1-based, monotonic across the whole URL's output
	TotalChunks int
	DocIndex    int // 0-based index of the originating document
	CharStart   int
	CharEnd     int
	Metadata    map[string]any
	LoaderType  string
	ScrapedAt   time.Time
}

// EmbeddedChunk is a DocumentChunk with its embedding vector attached.
// Dimension must match the active provider's declared dimension; a mismatch
// is a hard upload failure, never a silent truncation.
type EmbeddedChunk struct {
	DocumentChunk
	Embedding []float32
	Dimension int
}

// LinkRecord is one outbound link extracted from a source page.
// Records are deduplicated by (SourceURL, TargetURL) before persistence.
type LinkRecord struct {
	TargetURL  string
	SourceURL  string
	LoaderType string
}

// FailedURLEntry is one line of the append-only failed-URL log.
// A URL may appear multiple times across retry passes.
type FailedURLEntry struct {
	URL    string
	Reason string
}

// IngestionStats holds the running counters for a run. Counters use atomic
// increments so a parallel orchestrator can update them without a lock.
type IngestionStats struct {
	TotalURLs     atomic.Int64
	Successful    atomic.Int64
	Failed        atomic.Int64
	TotalChunks   atomic.Int64
	TotalLinks    atomic.Int64
	TotalUploads  atomic.Int64
	FailedUploads atomic.Int64
}

// StatsSnapshot is a point-in-time copy of IngestionStats, read at the end
// of a run for reporting.
type StatsSnapshot struct {
	TotalURLs     int64
	Successful    int64
	Failed        int64
	TotalChunks   int64
	TotalLinks    int64
	TotalUploads  int64
	FailedUploads int64
}

// Snapshot returns a copy of the counters for reporting.
func (s *IngestionStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		TotalURLs:     s.TotalURLs.Load(),
		Successful:    s.Successful.Load(),
		Failed:        s.Failed.Load(),
		TotalChunks:   s.TotalChunks.Load(),
		TotalLinks:    s.TotalLinks.Load(),
		TotalUploads:  s.TotalUploads.Load(),
		FailedUploads: s.FailedUploads.Load(),
	}
}
