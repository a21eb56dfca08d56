package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		h1 := ContentHash("the quick brown fox")
		h2 := ContentHash("the quick brown fox")
		assert.Equal(t, h1, h2)
	})

	t.Run("distinct content distinct hash", func(t *testing.T) {
		h1 := ContentHash("alpha")
		h2 := ContentHash("beta")
		assert.NotEqual(t, h1, h2)
	})

	t.Run("hex encoded 128 bits", func(t *testing.T) {
		h := ContentHash("anything")
		assert.Len(t, h, 32)
	})

	t.Run("empty content has a hash", func(t *testing.T) {
		assert.NotEmpty(t, ContentHash(""))
	})
}

func TestStatsSnapshot(t *testing.T) {
	var stats IngestionStats
	stats.TotalURLs.Add(3)
	stats.Successful.Add(2)
	stats.Failed.Add(1)
	stats.TotalChunks.Add(42)
	stats.TotalLinks.Add(7)
	stats.TotalUploads.Add(40)
	stats.FailedUploads.Add(2)

	snap := stats.Snapshot()
	require.Equal(t, int64(3), snap.TotalURLs)
	assert.Equal(t, int64(2), snap.Successful)
	assert.Equal(t, int64(1), snap.Failed)
	assert.Equal(t, int64(42), snap.TotalChunks)
	assert.Equal(t, int64(7), snap.TotalLinks)
	assert.Equal(t, int64(40), snap.TotalUploads)
	assert.Equal(t, int64(2), snap.FailedUploads)
}

func TestChunkZeroValueScrapedAt(t *testing.T) {
	chunk := DocumentChunk{Text: "x", SourceURL: "https://example.org", ChunkIndex: 1, TotalChunks: 1, CharEnd: 1}
	assert.True(t, chunk.ScrapedAt.IsZero())
	chunk.ScrapedAt = time.Now().UTC()
	assert.False(t, chunk.ScrapedAt.IsZero())
}
