package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	aimock "github.com/poiesic/harvester/ai/mock"
	"github.com/poiesic/harvester/core"
	storagemock "github.com/poiesic/harvester/storage/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, n int) *storagemock.Store {
	t.Helper()
	store := storagemock.NewStore()
	for i := 1; i <= n; i++ {
		require.NoError(t, store.UpsertChunk(context.Background(), core.EmbeddedChunk{
			DocumentChunk: core.DocumentChunk{
				Text:        "stored chunk " + string(rune('a'+i)),
				SourceURL:   "https://example.org/",
				ChunkIndex:  i,
				TotalChunks: n,
			},
			Embedding: []float32{0, 0, 0},
		}))
	}
	return store
}

func fastConfig() *Config {
	return &Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 2, RetryDelay: time.Millisecond}
}

func TestReembedderRun(t *testing.T) {
	store := seedStore(t, 5)
	embedder := aimock.NewMockEmbedder(8)
	var out bytes.Buffer

	r := NewReembedder(store, embedder, fastConfig(), &out)
	require.NoError(t, r.Run(context.Background()))

	for _, chunk := range store.Chunks() {
		assert.Len(t, chunk.Embedding, 8)
	}
	assert.Contains(t, out.String(), "Processed 5 records")
	// 5 records at batch size 2 is 3 embed calls.
	assert.Equal(t, 3, embedder.CallCount())
}

func TestReembedderEmptyStore(t *testing.T) {
	store := storagemock.NewStore()
	var out bytes.Buffer

	r := NewReembedder(store, aimock.NewMockEmbedder(8), fastConfig(), &out)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "No records found")
}

func TestReembedderRetriesEmbedding(t *testing.T) {
	store := seedStore(t, 2)
	embedder := aimock.NewMockEmbedder(4)
	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0, 0, 0}
		}
		return vectors, nil
	}

	r := NewReembedder(store, embedder, fastConfig(), nil)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestReembedderCountMismatch(t *testing.T) {
	store := seedStore(t, 2)
	embedder := aimock.NewMockEmbedder(4)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}

	r := NewReembedder(store, embedder, fastConfig(), nil)
	err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrCountMismatch)
}

func TestReembedderNormalize(t *testing.T) {
	store := seedStore(t, 1)
	embedder := aimock.NewMockEmbedder(2)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{3, 4}}, nil
	}

	cfg := fastConfig()
	cfg.Normalize = true
	r := NewReembedder(store, embedder, cfg, nil)
	require.NoError(t, r.Run(context.Background()))

	got := store.Chunks()[0].Embedding
	assert.InDelta(t, 0.6, got[0], 1e-6)
	assert.InDelta(t, 0.8, got[1], 1e-6)
}

func TestNormalizeVector(t *testing.T) {
	assert.Equal(t, []float32{1, 0}, NormalizeVector([]float32{2, 0}))
	assert.Equal(t, []float32{0, 0}, NormalizeVector([]float32{0, 0}))
	assert.Empty(t, NormalizeVector(nil))
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("succeeds after failures", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		}, 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		err := RetryWithBackoff(context.Background(), func() error {
			return errors.New("permanent")
		}, 2, time.Millisecond)
		require.EqualError(t, err, "permanent")
	})

	t.Run("invalid max attempts", func(t *testing.T) {
		err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryWithBackoff(ctx, func() error { return nil }, 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
