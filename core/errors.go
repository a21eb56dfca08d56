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

import "errors"

var (
	// ErrInvalidChunk indicates a chunk that violates domain rules.
	ErrInvalidChunk = errors.New("invalid document chunk")

	// ErrEmptyContent indicates empty chunk text.
	ErrEmptyContent = errors.New("empty content")

	// ErrInvalidOffsets indicates character offsets inconsistent with the chunk text.
	ErrInvalidOffsets = errors.New("invalid character offsets")

	// ErrInvalidChunkIndex indicates a chunk index outside [1, TotalChunks].
	ErrInvalidChunkIndex = errors.New("invalid chunk index")

	// ErrMissingSourceURL indicates a chunk without a source URL.
	ErrMissingSourceURL = errors.New("missing source URL")

	// ErrDimensionMismatch indicates an embedding whose length differs from
	// its declared dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
