package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name string
	dim  int
}

func (p *fakeProvider) Embedder() Embedder { return nil }
func (p *fakeProvider) Name() string       { return p.name }
func (p *fakeProvider) Dimension() int     { return p.dim }
func (p *fakeProvider) Close() error       { return nil }

func spec(name string, dim int, err error) ProviderSpec {
	return ProviderSpec{
		Name:      name,
		Dimension: dim,
		New: func(ctx context.Context) (EmbeddingProvider, error) {
			if err != nil {
				return nil, err
			}
			return &fakeProvider{name: name, dim: dim}, nil
		},
	}
}

func TestNewChainFirstSuccessWins(t *testing.T) {
	provider, err := NewChain(context.Background(), []ProviderSpec{
		spec("primary", 1536, nil),
		spec("fallback", 768, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "primary", provider.Name())
	assert.Equal(t, 1536, provider.Dimension())
}

func TestNewChainFallsThroughFailures(t *testing.T) {
	provider, err := NewChain(context.Background(), []ProviderSpec{
		spec("primary", 1536, errors.New("connection refused")),
		spec("middle", 768, errors.New("model not found")),
		spec("last", 384, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "last", provider.Name())
	assert.Equal(t, 384, provider.Dimension())
}

func TestNewChainExhausted(t *testing.T) {
	provider, err := NewChain(context.Background(), []ProviderSpec{
		spec("primary", 1536, errors.New("connection refused")),
		spec("fallback", 768, errors.New("model not found")),
	})
	require.Nil(t, provider)
	require.ErrorIs(t, err, ErrNoProvider)
	// Per-backend failures are preserved for diagnostics.
	assert.Contains(t, err.Error(), "primary")
	assert.Contains(t, err.Error(), "model not found")
}

func TestNewChainEmptySpecs(t *testing.T) {
	provider, err := NewChain(context.Background(), nil)
	assert.Nil(t, provider)
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestNewChainStopsAtFirstSuccess(t *testing.T) {
	calls := 0
	counting := ProviderSpec{
		Name:      "second",
		Dimension: 768,
		New: func(ctx context.Context) (EmbeddingProvider, error) {
			calls++
			return &fakeProvider{name: "second", dim: 768}, nil
		},
	}
	_, err := NewChain(context.Background(), []ProviderSpec{spec("first", 1536, nil), counting})
	require.NoError(t, err)
	assert.Zero(t, calls)
}
