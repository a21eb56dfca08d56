package upload

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/harvester/ai/mock"
	"github.com/poiesic/harvester/core"
	storagemock "github.com/poiesic/harvester/storage/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeChunks(n int) []core.DocumentChunk {
	chunks := make([]core.DocumentChunk, n)
	for i := range chunks {
		chunks[i] = core.DocumentChunk{
			Text:        fmt.Sprintf("chunk %d body text", i+1),
			SourceURL:   "https://example.org/page",
			ChunkIndex:  i + 1,
			TotalChunks: n,
			LoaderType:  "standard",
		}
	}
	return chunks
}

func TestUploadChunksBatches(t *testing.T) {
	provider := mock.NewMockProvider()
	store := storagemock.NewStore()
	uploader := New(provider, store, WithBatchSize(50))

	res, err := uploader.UploadChunks(context.Background(), makeChunks(120))
	require.NoError(t, err)

	assert.Equal(t, 120, res.Uploaded)
	assert.Zero(t, res.Failed)
	assert.Equal(t, 3, res.Batches)
	assert.Equal(t, 3, store.BatchCalls())
	require.Len(t, store.Chunks(), 120)
}

func TestUploadChunksDimensionConsistency(t *testing.T) {
	provider := mock.NewMockProvider()
	store := storagemock.NewStore()
	uploader := New(provider, store)

	_, err := uploader.UploadChunks(context.Background(), makeChunks(5))
	require.NoError(t, err)

	for _, chunk := range store.Chunks() {
		assert.Equal(t, provider.Dimension(), chunk.Dimension)
		assert.Len(t, chunk.Embedding, provider.Dimension())
	}
}

func TestUploadChunksEmbeddingFailureIsBatchFatal(t *testing.T) {
	embedder := mock.NewMockEmbedder(384)
	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("service down")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = make([]float32, 384)
		}
		return vectors, nil
	}
	provider := mock.NewMockProviderWithEmbedder(embedder)
	store := storagemock.NewStore()
	uploader := New(provider, store, WithBatchSize(10))

	res, err := uploader.UploadChunks(context.Background(), makeChunks(20))
	require.NoError(t, err)

	// First batch of 10 failed to embed, second batch uploaded.
	assert.Equal(t, 10, res.Failed)
	assert.Equal(t, 10, res.Uploaded)
	assert.Len(t, store.Chunks(), 10)
}

func TestUploadChunksCountMismatchIsBatchFatal(t *testing.T) {
	embedder := mock.NewMockEmbedder(384)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{make([]float32, 384)}, nil
	}
	provider := mock.NewMockProviderWithEmbedder(embedder)
	store := storagemock.NewStore()
	uploader := New(provider, store)

	res, err := uploader.UploadChunks(context.Background(), makeChunks(3))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Failed)
	assert.Zero(t, res.Uploaded)
	assert.Empty(t, store.Chunks())
}

func TestUploadChunksPerRecordFallback(t *testing.T) {
	provider := mock.NewMockProvider()
	store := storagemock.NewStore()
	store.UpsertChunksFunc = func(ctx context.Context, chunks []core.EmbeddedChunk) error {
		return errors.New("constraint violation somewhere in the batch")
	}
	recordCalls := 0
	store.UpsertChunkFunc = func(ctx context.Context, chunk core.EmbeddedChunk) error {
		recordCalls++
		if chunk.ChunkIndex == 2 {
			return errors.New("bad record")
		}
		return nil
	}
	uploader := New(provider, store)

	res, err := uploader.UploadChunks(context.Background(), makeChunks(4))
	require.NoError(t, err)

	assert.Equal(t, 4, recordCalls)
	assert.Equal(t, 3, res.Uploaded)
	assert.Equal(t, 1, res.Failed)
}

func TestUploadChunksCancelled(t *testing.T) {
	provider := mock.NewMockProvider()
	store := storagemock.NewStore()
	uploader := New(provider, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uploader.UploadChunks(ctx, makeChunks(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUploadLinks(t *testing.T) {
	provider := mock.NewMockProvider()
	store := storagemock.NewStore()
	uploader := New(provider, store)

	links := []core.LinkRecord{
		{SourceURL: "https://a.example/", TargetURL: "https://x.example/", LoaderType: "standard"},
		{SourceURL: "https://a.example/", TargetURL: "https://y.example/", LoaderType: "standard"},
		{SourceURL: "https://b.example/", TargetURL: "https://x.example/", LoaderType: "jsrender"},
	}
	res, err := uploader.UploadLinks(context.Background(), links)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Uploaded)

	stored := store.Chunks()
	require.Len(t, stored, 3)
	for _, chunk := range stored {
		assert.Equal(t, "extracted_link", chunk.Metadata["type"])
		assert.Equal(t, chunk.Text, chunk.Metadata["target_url"])
	}
	// Indexes restart per source.
	assert.Equal(t, 1, stored[0].ChunkIndex)
	assert.Equal(t, 2, stored[1].ChunkIndex)
	assert.Equal(t, 2, stored[1].TotalChunks)
	assert.Equal(t, 1, stored[2].ChunkIndex)
	assert.Equal(t, 1, stored[2].TotalChunks)
}
