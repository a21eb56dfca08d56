package openai

import (
	"context"
	"errors"

	"github.com/poiesic/harvester/ai"
)

// Output dimensions of the chain's models. These are fixed properties
// of the models, not tunables.
const (
	DimensionTextEmbedding3Small = 1536
	DimensionNomicEmbedText      = 768
	DimensionAllMiniLM           = 384
)

// FallbackSpecs builds the standard provider chain for ai.NewChain:
// the configured remote model first, then nomic-embed-text and
// all-minilm on the local host. The remote entry fails immediately
// when no API key is configured so the chain moves on without a
// network round-trip.
func FallbackSpecs(cfg *ai.Config) []ai.ProviderSpec {
	cfg.Normalize()

	return []ai.ProviderSpec{
		{
			Name:      "remote/" + cfg.RemoteModel,
			Dimension: DimensionTextEmbedding3Small,
			New: func(ctx context.Context) (ai.EmbeddingProvider, error) {
				if cfg.APIKey == "" {
					return nil, errors.New("no API key configured")
				}
				return NewProvider(ctx, "remote/"+cfg.RemoteModel,
					cfg.RemoteHost, cfg.RemoteModel, cfg.APIKey,
					DimensionTextEmbedding3Small)
			},
		},
		{
			Name:      "local/nomic-embed-text",
			Dimension: DimensionNomicEmbedText,
			New: func(ctx context.Context) (ai.EmbeddingProvider, error) {
				return NewProvider(ctx, "local/nomic-embed-text",
					cfg.LocalHost, "nomic-embed-text", "",
					DimensionNomicEmbedText)
			},
		},
		{
			Name:      "local/all-minilm",
			Dimension: DimensionAllMiniLM,
			New: func(ctx context.Context) (ai.EmbeddingProvider, error) {
				return NewProvider(ctx, "local/all-minilm",
					cfg.LocalHost, "all-minilm", "",
					DimensionAllMiniLM)
			},
		},
	}
}
