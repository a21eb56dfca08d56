package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChunk() DocumentChunk {
	return DocumentChunk{
		Text:        "some chunk text",
		SourceURL:   "https://example.org/page",
		ChunkIndex:  1,
		TotalChunks: 2,
		CharStart:   0,
		CharEnd:     15,
	}
}

func TestValidateChunk(t *testing.T) {
	t.Run("valid chunk", func(t *testing.T) {
		chunk := validChunk()
		assert.NoError(t, ValidateChunk(&chunk))
	})

	t.Run("nil chunk", func(t *testing.T) {
		err := ValidateChunk(nil)
		assert.ErrorIs(t, err, ErrInvalidChunk)
	})

	t.Run("empty text", func(t *testing.T) {
		chunk := validChunk()
		chunk.Text = ""
		err := ValidateChunk(&chunk)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("missing source URL", func(t *testing.T) {
		chunk := validChunk()
		chunk.SourceURL = ""
		err := ValidateChunk(&chunk)
		assert.ErrorIs(t, err, ErrMissingSourceURL)
	})

	t.Run("offset length mismatch", func(t *testing.T) {
		chunk := validChunk()
		chunk.CharEnd = chunk.CharStart + len(chunk.Text) + 3
		err := ValidateChunk(&chunk)
		assert.ErrorIs(t, err, ErrInvalidOffsets)
	})

	t.Run("zero chunk index", func(t *testing.T) {
		chunk := validChunk()
		chunk.ChunkIndex = 0
		err := ValidateChunk(&chunk)
		assert.ErrorIs(t, err, ErrInvalidChunkIndex)
	})

	t.Run("index beyond total", func(t *testing.T) {
		chunk := validChunk()
		chunk.ChunkIndex = 3
		chunk.TotalChunks = 2
		err := ValidateChunk(&chunk)
		assert.ErrorIs(t, err, ErrInvalidChunkIndex)
	})
}

func TestValidateEmbeddedChunk(t *testing.T) {
	t.Run("matching dimension", func(t *testing.T) {
		chunk := EmbeddedChunk{
			DocumentChunk: validChunk(),
			Embedding:     []float32{0.1, 0.2, 0.3},
			Dimension:     3,
		}
		assert.NoError(t, ValidateEmbeddedChunk(&chunk))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		chunk := EmbeddedChunk{
			DocumentChunk: validChunk(),
			Embedding:     []float32{0.1, 0.2},
			Dimension:     3,
		}
		err := ValidateEmbeddedChunk(&chunk)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("invalid inner chunk surfaces", func(t *testing.T) {
		chunk := EmbeddedChunk{Dimension: 0}
		err := ValidateEmbeddedChunk(&chunk)
		assert.ErrorIs(t, err, ErrInvalidChunk)
	})
}

func TestVerifyChunkPosition(t *testing.T) {
	cleaned := "Heading one. Some body content follows here."

	t.Run("round trip", func(t *testing.T) {
		chunk := DocumentChunk{Text: "Some body", CharStart: 13, CharEnd: 22}
		require.Equal(t, cleaned[13:22], chunk.Text)
		assert.True(t, VerifyChunkPosition(cleaned, &chunk))
	})

	t.Run("wrong offsets", func(t *testing.T) {
		chunk := DocumentChunk{Text: "Some body", CharStart: 0, CharEnd: 9}
		assert.False(t, VerifyChunkPosition(cleaned, &chunk))
	})

	t.Run("out of range", func(t *testing.T) {
		chunk := DocumentChunk{Text: "x", CharStart: len(cleaned), CharEnd: len(cleaned) + 1}
		assert.False(t, VerifyChunkPosition(cleaned, &chunk))
	})
}
