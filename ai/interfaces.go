package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch. The returned slice contains exactly one embedding per input
	// text, in the same order. Returns an error if any embedding fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingProvider is an initialized embedding backend. Every vector it
// produces has the declared Dimension; callers rely on that when writing
// to a fixed-width vector column.
type EmbeddingProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Name identifies the backend for logging and run summaries.
	Name() string

	// Dimension is the fixed length of every vector this provider emits.
	Dimension() int

	// Close releases resources held by the provider.
	// After Close is called, the provider should not be used.
	Close() error
}
