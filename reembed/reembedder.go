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

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/harvester/ai"
	"github.com/poiesic/harvester/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Normalize re-normalizes every vector to unit length before the
	// write-back, for backends that return unnormalized vectors.
	Normalize bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder walks every stored chunk and replaces its embedding with
// one from the given embedder.
type Reembedder struct {
	store    storage.DocumentStore
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(store storage.DocumentStore, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Reembedder{
		store:    store,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run reembeds every chunk in the store. Progress is reported to the
// configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	fmt.Fprintf(r.progress, "Starting reembedding (batch size: %d)\n", r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, 0, r.config.ReportInterval)
	tracker.Start()

	err := r.store.IterateChunks(ctx, r.config.BatchSize, func(rows []storage.StoredChunk) error {
		if err := r.processBatch(ctx, rows); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		tracker.Increment(len(rows))
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	total := tracker.Count()
	if total == 0 {
		fmt.Fprintf(r.progress, "No records found in store\n")
		return nil
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d records in %v (%.1f records/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())
	return nil
}

func (r *Reembedder) processBatch(ctx context.Context, rows []storage.StoredChunk) error {
	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Content
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = r.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return err
	}
	if len(vectors) != len(rows) {
		return fmt.Errorf("%w: sent %d texts, got %d vectors", ErrCountMismatch, len(rows), len(vectors))
	}

	for i, row := range rows {
		vector := vectors[i]
		if r.config.Normalize {
			vector = NormalizeVector(vector)
		}
		updateErr := RetryWithBackoff(ctx, func() error {
			return r.store.UpdateEmbedding(ctx, row.ID, vector)
		}, r.config.MaxRetries, r.config.RetryDelay)
		if updateErr != nil {
			return fmt.Errorf("update chunk %d: %w", row.ID, updateErr)
		}
	}
	return nil
}
