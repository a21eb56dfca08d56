// Package mock provides test double implementations of the ai interfaces.
//
// The mocks allow tests to run without external embedding services and
// enable controlled, deterministic behavior:
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	vec, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder(384)
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// MockEmbedder returns deterministic vectors derived from a hash of the
// input text, so identical texts always embed identically within the
// configured dimension.
package mock
