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


package core

import "fmt"

// ValidateChunk validates a DocumentChunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - SourceURL must not be empty
//   - CharEnd-CharStart must equal len(Text)
//   - ChunkIndex must be within [1, TotalChunks]
//
// NOT validated (populated later in the pipeline):
//   - Metadata (may be nil until the processor attaches it)
//   - ScrapedAt (zero value is filled in by the processor)
func ValidateChunk(chunk *DocumentChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.SourceURL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingSourceURL)
	}

	if chunk.CharEnd-chunk.CharStart != len(chunk.Text) {
		return fmt.Errorf("%w: %w: [%d,%d) for %d bytes of text",
			ErrInvalidChunk, ErrInvalidOffsets, chunk.CharStart, chunk.CharEnd, len(chunk.Text))
	}

	if chunk.ChunkIndex < 1 || chunk.ChunkIndex > chunk.TotalChunks {
		return fmt.Errorf("%w: %w: %d of %d",
			ErrInvalidChunk, ErrInvalidChunkIndex, chunk.ChunkIndex, chunk.TotalChunks)
	}

	return nil
}

// ValidateEmbeddedChunk validates an EmbeddedChunk, including that the
// embedding length matches its declared dimension.
func ValidateEmbeddedChunk(chunk *EmbeddedChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if err := ValidateChunk(&chunk.DocumentChunk); err != nil {
		return err
	}

	if len(chunk.Embedding) != chunk.Dimension {
		return fmt.Errorf("%w: got %d values, declared %d",
			ErrDimensionMismatch, len(chunk.Embedding), chunk.Dimension)
	}

	return nil
}

// VerifyChunkPosition checks the position round-trip invariant against the
// cleaned content the chunk was produced from.
func VerifyChunkPosition(cleaned string, chunk *DocumentChunk) bool {
	if chunk.CharStart < 0 || chunk.CharEnd > len(cleaned) || chunk.CharStart > chunk.CharEnd {
		return false
	}
	return cleaned[chunk.CharStart:chunk.CharEnd] == chunk.Text
}
