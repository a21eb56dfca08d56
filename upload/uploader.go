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

// Package upload turns document chunks into embedded records and
// writes them to the document store in batches.
//
// Each batch is embedded with one EmbedTexts call and written with one
// multi-row upsert. A failed batch upsert degrades to per-record
// writes, so a single bad record does not void an otherwise valid
// batch. Embedding failures are batch-fatal: the affected chunks stay
// un-embedded and are never uploaded.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/harvester/ai"
	"github.com/poiesic/harvester/core"
	"github.com/poiesic/harvester/storage"
)

const defaultBatchSize = 50

// Result summarizes one upload call.
type Result struct {
	// Uploaded is the number of records written to the store.
	Uploaded int

	// Failed is the number of records that could not be written,
	// counting both embedding-failed batches and per-record fallback
	// failures.
	Failed int

	// Batches is the number of batches attempted.
	Batches int
}

// Uploader writes embedded chunks to a DocumentStore.
type Uploader struct {
	provider  ai.EmbeddingProvider
	store     storage.DocumentStore
	batchSize int
	logger    *slog.Logger
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithLogger sets the logger used by the uploader.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Uploader) {
		u.logger = logger
	}
}

// WithBatchSize overrides the upload batch size.
func WithBatchSize(size int) Option {
	return func(u *Uploader) {
		if size > 0 {
			u.batchSize = size
		}
	}
}

// New creates an Uploader backed by the given provider and store.
func New(provider ai.EmbeddingProvider, store storage.DocumentStore, opts ...Option) *Uploader {
	u := &Uploader{
		provider:  provider,
		store:     store,
		batchSize: defaultBatchSize,
		logger:    slog.Default().With("component", "uploader"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UploadChunks embeds and upserts the chunks in batches. Per-batch and
// per-record failures are counted in the Result rather than aborting
// the call; the returned error is reserved for context cancellation.
func (u *Uploader) UploadChunks(ctx context.Context, chunks []core.DocumentChunk) (Result, error) {
	var res Result
	for start := 0; start < len(chunks); start += u.batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := start + u.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		res.Batches++
		u.uploadBatch(ctx, chunks[start:end], &res)
	}
	return res, nil
}

func (u *Uploader) uploadBatch(ctx context.Context, batch []core.DocumentChunk, res *Result) {
	embedded, err := u.embedBatch(ctx, batch)
	if err != nil {
		u.logger.Error("embedding failed for batch", "size", len(batch), "err", err)
		res.Failed += len(batch)
		return
	}

	err = u.store.UpsertChunks(ctx, embedded)
	if err == nil {
		res.Uploaded += len(embedded)
		return
	}
	u.logger.Warn("batch upsert failed, retrying per record", "size", len(embedded), "err", err)

	for _, chunk := range embedded {
		if err := u.store.UpsertChunk(ctx, chunk); err != nil {
			u.logger.Error("record upsert failed",
				"source", chunk.SourceURL, "chunk", chunk.ChunkIndex, "err", err)
			res.Failed++
			continue
		}
		res.Uploaded++
	}
}

// embedBatch embeds the batch texts and pairs each vector with its
// chunk. The provider must return exactly one vector per text, each at
// the provider's declared dimension.
func (u *Uploader) embedBatch(ctx context.Context, batch []core.DocumentChunk) ([]core.EmbeddedChunk, error) {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	vectors, err := u.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors",
			len(texts), len(vectors))
	}

	dimension := u.provider.Dimension()
	embedded := make([]core.EmbeddedChunk, len(batch))
	for i, chunk := range batch {
		if len(vectors[i]) != dimension {
			return nil, fmt.Errorf("%w: vector %d has %d, provider %s declares %d",
				core.ErrDimensionMismatch, i, len(vectors[i]), u.provider.Name(), dimension)
		}
		embedded[i] = core.EmbeddedChunk{
			DocumentChunk: chunk,
			Embedding:     vectors[i],
			Dimension:     dimension,
		}
	}
	return embedded, nil
}

// UploadLinks writes link records as chunk-like rows so they join the
// same search index. Each row carries metadata.type "extracted_link".
func (u *Uploader) UploadLinks(ctx context.Context, links []core.LinkRecord) (Result, error) {
	chunks := make([]core.DocumentChunk, 0, len(links))
	perSource := make(map[string]int)
	for _, link := range links {
		perSource[link.SourceURL]++
		chunks = append(chunks, core.DocumentChunk{
			Text:        link.TargetURL,
			SourceURL:   link.SourceURL,
			ChunkIndex:  perSource[link.SourceURL],
			LoaderType:  link.LoaderType,
			ScrapedAt:   time.Now().UTC(),
			Metadata: map[string]any{
				"type":       "extracted_link",
				"target_url": link.TargetURL,
			},
		})
	}
	// Chunk indexes are per source; total is the source's link count.
	for i := range chunks {
		chunks[i].TotalChunks = perSource[chunks[i].SourceURL]
	}
	return u.UploadChunks(ctx, chunks)
}
