package process

import (
	"bytes"
	"strings"
	"testing"

	"github.com/poiesic/harvester/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBlock() *FileBlock {
	return &FileBlock{
		SourceURL:          "https://example.org/page",
		Loader:             "standard",
		DocumentsLoaded:    2,
		DocumentsProcessed: 2,
		Chunks: []core.DocumentChunk{
			{
				Text:        "First chunk text\nwith an interior newline",
				SourceURL:   "https://example.org/page",
				ChunkIndex:  1,
				TotalChunks: 2,
			},
			{
				Text:        "Second chunk from a crawled subpage",
				SourceURL:   "https://example.org/page/sub",
				ChunkIndex:  2,
				TotalChunks: 2,
			},
		},
	}
}

func TestWriteBlockFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBlock(&buf, sampleBlock()))
	out := buf.String()

	assert.Contains(t, out, strings.Repeat("=", 70))
	assert.Contains(t, out, "SOURCE: https://example.org/page\n")
	assert.Contains(t, out, "LOADER: standard\n")
	assert.Contains(t, out, "DOCUMENTS_LOADED: 2 | DOCUMENTS_PROCESSED: 2 | CHUNKS: 2\n")
	assert.Contains(t, out, "--- CHUNK 1/2 ---\n")
	assert.Contains(t, out, "--- CHUNK 2/2 ---\n")
	// chunk source noted only when it differs from the block source
	assert.Equal(t, 1, strings.Count(out, "(Chunk Source: "))
	assert.Contains(t, out, "(Chunk Source: https://example.org/page/sub)\n")
}

func TestParseBlocksRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBlock(&buf, sampleBlock()))

	second := sampleBlock()
	second.SourceURL = "https://example.org/other"
	second.Chunks = second.Chunks[:1]
	second.Chunks[0].SourceURL = second.SourceURL
	require.NoError(t, WriteBlock(&buf, second))

	blocks, err := ParseBlocks(&buf)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	first := blocks[0]
	assert.Equal(t, "https://example.org/page", first.SourceURL)
	assert.Equal(t, "standard", first.Loader)
	assert.Equal(t, 2, first.DocumentsLoaded)
	require.Len(t, first.Chunks, 2)
	assert.Equal(t, "First chunk text\nwith an interior newline", first.Chunks[0].Text)
	assert.Equal(t, "https://example.org/page", first.Chunks[0].SourceURL)
	assert.Equal(t, 1, first.Chunks[0].ChunkIndex)
	assert.Equal(t, 2, first.Chunks[0].TotalChunks)
	assert.Equal(t, "https://example.org/page/sub", first.Chunks[1].SourceURL)
	assert.Equal(t, "standard", first.Chunks[1].LoaderType)

	assert.Equal(t, "https://example.org/other", blocks[1].SourceURL)
	require.Len(t, blocks[1].Chunks, 1)
}

func TestParseBlocksEmptyFile(t *testing.T) {
	blocks, err := ParseBlocks(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestBlockFromResult(t *testing.T) {
	result := &PageResult{
		SourceURL:          "https://example.org/p",
		LoaderType:         "jsrender",
		DocumentsLoaded:    3,
		DocumentsProcessed: 2,
		Chunks:             []core.DocumentChunk{{Text: "x", ChunkIndex: 1, TotalChunks: 1}},
	}
	block := BlockFromResult(result)
	assert.Equal(t, "https://example.org/p", block.SourceURL)
	assert.Equal(t, "jsrender", block.Loader)
	assert.Equal(t, 3, block.DocumentsLoaded)
	assert.Equal(t, 2, block.DocumentsProcessed)
	assert.Len(t, block.Chunks, 1)
}
