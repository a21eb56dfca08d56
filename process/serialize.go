package process

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/harvester/core"
)

// Chunk file format, append-only, one block per URL:
//
//	======================================================================
//	SOURCE: <url>
//	LOADER: <strategy>
//	DOCUMENTS_LOADED: <n> | DOCUMENTS_PROCESSED: <n> | CHUNKS: <n>
//	======================================================================
//
//	--- CHUNK <i>/<total> ---
//	<chunk text>
//	(Chunk Source: <url>)        only when it differs from SOURCE
//
// Batch-mode runs append blocks as URLs are processed; a later pass parses
// the file back into records for upload.

var blockRule = strings.Repeat("=", 70)

var (
	chunkHeaderRe  = regexp.MustCompile(`^--- CHUNK (\d+)/(\d+) ---$`)
	chunkSourceRe  = regexp.MustCompile(`^\(Chunk Source: (.+)\)$`)
	blockCountsRe  = regexp.MustCompile(`^DOCUMENTS_LOADED: (\d+) \| DOCUMENTS_PROCESSED: (\d+) \| CHUNKS: (\d+)$`)
	prefixSourceRe = regexp.MustCompile(`^SOURCE: (.+)$`)
	prefixLoaderRe = regexp.MustCompile(`^LOADER: (.+)$`)
)

// FileBlock is one per-URL block of the chunk file.
type FileBlock struct {
	SourceURL          string
	Loader             string
	DocumentsLoaded    int
	DocumentsProcessed int
	Chunks             []core.DocumentChunk
}

// WriteBlock appends one URL's block to w.
func WriteBlock(w io.Writer, block *FileBlock) error {
	var b strings.Builder
	b.WriteString(blockRule + "\n")
	fmt.Fprintf(&b, "SOURCE: %s\n", block.SourceURL)
	fmt.Fprintf(&b, "LOADER: %s\n", block.Loader)
	fmt.Fprintf(&b, "DOCUMENTS_LOADED: %d | DOCUMENTS_PROCESSED: %d | CHUNKS: %d\n",
		block.DocumentsLoaded, block.DocumentsProcessed, len(block.Chunks))
	b.WriteString(blockRule + "\n\n")

	for _, chunk := range block.Chunks {
		fmt.Fprintf(&b, "--- CHUNK %d/%d ---\n", chunk.ChunkIndex, chunk.TotalChunks)
		b.WriteString(chunk.Text)
		b.WriteString("\n")
		if chunk.SourceURL != "" && chunk.SourceURL != block.SourceURL {
			fmt.Fprintf(&b, "(Chunk Source: %s)\n", chunk.SourceURL)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// BlockFromResult builds a FileBlock from a processed page.
func BlockFromResult(result *PageResult) *FileBlock {
	return &FileBlock{
		SourceURL:          result.SourceURL,
		Loader:             result.LoaderType,
		DocumentsLoaded:    result.DocumentsLoaded,
		DocumentsProcessed: result.DocumentsProcessed,
		Chunks:             result.Chunks,
	}
}

// ParseBlocks reads a chunk file back into its blocks. Chunk text is
// reproduced exactly, including interior newlines.
func ParseBlocks(r io.Reader) ([]FileBlock, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		blocks  []FileBlock
		current *FileBlock
		chunk   *core.DocumentChunk
		text    []string
	)

	finishChunk := func() {
		if chunk == nil {
			return
		}
		// Trailing blank lines belong to the format, not the chunk.
		for len(text) > 0 && text[len(text)-1] == "" {
			text = text[:len(text)-1]
		}
		chunk.Text = strings.Join(text, "\n")
		if chunk.SourceURL == "" {
			chunk.SourceURL = current.SourceURL
		}
		chunk.LoaderType = current.Loader
		chunk.CharEnd = chunk.CharStart + len(chunk.Text)
		current.Chunks = append(current.Chunks, *chunk)
		chunk = nil
		text = nil
	}
	finishBlock := func() {
		finishChunk()
		if current != nil {
			blocks = append(blocks, *current)
			current = nil
		}
	}

	inHeader := false
	for scanner.Scan() {
		line := scanner.Text()

		if line == blockRule {
			if inHeader {
				inHeader = false // closing rule of a header
				continue
			}
			finishBlock()
			current = &FileBlock{}
			inHeader = true
			continue
		}

		if current == nil {
			continue // leading noise
		}

		if inHeader {
			switch {
			case prefixSourceRe.MatchString(line):
				current.SourceURL = prefixSourceRe.FindStringSubmatch(line)[1]
			case prefixLoaderRe.MatchString(line):
				current.Loader = prefixLoaderRe.FindStringSubmatch(line)[1]
			case blockCountsRe.MatchString(line):
				m := blockCountsRe.FindStringSubmatch(line)
				current.DocumentsLoaded, _ = strconv.Atoi(m[1])
				current.DocumentsProcessed, _ = strconv.Atoi(m[2])
			}
			continue
		}

		if m := chunkHeaderRe.FindStringSubmatch(line); m != nil {
			finishChunk()
			index, _ := strconv.Atoi(m[1])
			total, _ := strconv.Atoi(m[2])
			chunk = &core.DocumentChunk{ChunkIndex: index, TotalChunks: total}
			continue
		}

		if chunk != nil {
			if m := chunkSourceRe.FindStringSubmatch(line); m != nil {
				chunk.SourceURL = m[1]
				continue
			}
			text = append(text, line)
		}
	}
	finishBlock()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chunk file: %w", err)
	}
	return blocks, nil
}
