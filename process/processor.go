// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package process turns fetched raw documents into position-addressable
// chunks plus the page's outbound links.
//
// Each document is cleaned, split with a recursive separator-priority
// splitter, and every chunk is located inside its document's cleaned text so
// that cleaned[CharStart:CharEnd] reproduces the chunk exactly. Cleaning that
// empties every document falls back to the raw content: recall is preferred
// over precision, a URL that fetched successfully should not yield zero
// chunks because its markup confused the cleaner.
package process

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/harvester/cleaner"
	"github.com/poiesic/harvester/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// chunkSeparators is the split priority: paragraph, line, sentence-ish
// punctuation, space, hard cut.
var chunkSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// PageResult is the processed output for one URL.
type PageResult struct {
	SourceURL          string
	LoaderType         string
	Chunks             []core.DocumentChunk
	Links              []core.LinkRecord
	DocumentsLoaded    int
	DocumentsProcessed int
	RawFallback        bool // true when cleaning emptied everything and raw content was used
}

// Processor cleans, chunks and position-tracks documents.
type Processor struct {
	cleaner      *cleaner.Cleaner
	splitter     textsplitter.RecursiveCharacter
	chunkSize    int
	chunkOverlap int
	fetchHTML    fetchFunc
	logger       *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithChunking overrides the chunk size and overlap.
func WithChunking(size, overlap int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
		if overlap >= 0 && overlap < size {
			p.chunkOverlap = overlap
		}
	}
}

// WithLinkFetcher replaces the HTTP fetch used for link extraction.
// Primarily for tests.
func WithLinkFetcher(fn fetchFunc) Option {
	return func(p *Processor) {
		if fn != nil {
			p.fetchHTML = fn
		}
	}
}

// New creates a Processor.
func New(cl *cleaner.Cleaner, opts ...Option) *Processor {
	p := &Processor{
		cleaner:      cl,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		fetchHTML:    defaultFetchHTML,
		logger:       slog.Default().With("component", "processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.chunkOverlap),
		textsplitter.WithSeparators(chunkSeparators),
	)
	return p
}

// Process cleans and chunks the documents fetched for one URL, then
// extracts the page's outbound links. Documents that clean to empty are
// dropped individually; if every document empties, the raw content is used
// instead so the URL still produces chunks.
func (p *Processor) Process(ctx context.Context, sourceURL string, docs []core.RawDocument, loaderType string) (*PageResult, error) {
	log := p.logger.With("url", sourceURL)

	result := &PageResult{
		SourceURL:       sourceURL,
		LoaderType:      loaderType,
		DocumentsLoaded: len(docs),
	}

	cleaned := make([]string, len(docs))
	allEmpty := true
	for i, doc := range docs {
		cleaned[i] = p.cleaner.CleanText(doc.Content)
		if cleaned[i] != "" {
			allEmpty = false
		}
	}
	if allEmpty && len(docs) > 0 {
		log.Warn("cleaning emptied all documents, falling back to raw content")
		result.RawFallback = true
		for i, doc := range docs {
			cleaned[i] = strings.TrimSpace(doc.Content)
		}
	}

	scrapedAt := time.Now().UTC()
	fileIndex := 0
	for docIdx, content := range cleaned {
		if content == "" {
			continue
		}
		result.DocumentsProcessed++

		pieces, err := p.splitter.SplitText(content)
		if err != nil {
			log.Warn("splitter failed, emitting document as one chunk", "doc", docIdx, "err", err)
			pieces = nil
		}
		if len(pieces) == 0 {
			// Non-empty content must never silently drop.
			pieces = []string{content}
		}

		tracker := newPositionTracker(content, p.chunkOverlap)
		for chunkInDoc, text := range pieces {
			start, end, approximate := tracker.locate(text)
			if approximate {
				log.Debug("chunk position approximated",
					"doc", docIdx, "chunk_in_doc", chunkInDoc+1, "offset", start)
			}

			fileIndex++
			metadata := map[string]any{
				"chunk_in_doc": chunkInDoc + 1,
				"doc_chunks":   len(pieces),
			}
			if docIdx < len(docs) && docs[docIdx].Metadata != nil {
				if title, ok := docs[docIdx].Metadata["title"].(string); ok && title != "" {
					metadata["title"] = title
				}
				if src, ok := docs[docIdx].Metadata["source"].(string); ok && src != "" {
					metadata["source"] = src
				}
			}
			if approximate {
				metadata["position_approximate"] = true
			}

			result.Chunks = append(result.Chunks, core.DocumentChunk{
				Text:       text,
				SourceURL:  sourceURL,
				ChunkIndex: fileIndex,
				DocIndex:   docIdx,
				CharStart:  start,
				CharEnd:    end,
				Metadata:   metadata,
				LoaderType: loaderType,
				ScrapedAt:  scrapedAt,
			})
		}
	}

	for i := range result.Chunks {
		result.Chunks[i].TotalChunks = len(result.Chunks)
	}

	result.Links = p.extractLinks(ctx, sourceURL, loaderType)

	log.Info("processing complete",
		"documents", result.DocumentsProcessed,
		"chunks", len(result.Chunks),
		"links", len(result.Links))
	return result, nil
}
