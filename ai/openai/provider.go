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


package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/harvester/ai"
)

// probeTimeout bounds the initialization embedding call.
const probeTimeout = 15 * time.Second

// Provider implements ai.EmbeddingProvider for one OpenAI-compatible
// host and model.
type Provider struct {
	name      string
	dimension int
	embedder  *Embedder
	logger    *slog.Logger
}

var _ ai.EmbeddingProvider = (*Provider)(nil)

// NewProvider initializes an embedding backend and verifies it with a
// probe call. The probe must succeed and return a vector of exactly
// dimension elements, otherwise the backend is rejected.
//
// Returns ai.EmbeddingProvider interface (not *Provider) to enforce
// abstraction.
func NewProvider(ctx context.Context, name, host, model, token string, dimension int) (ai.EmbeddingProvider, error) {
	if host == "" {
		return nil, errors.New("host is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}

	embedder, err := newEmbedder(host, model, token)
	if err != nil {
		return nil, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	vec, err := embedder.EmbedText(probeCtx, "ping")
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", host, err)
	}
	if len(vec) != dimension {
		return nil, fmt.Errorf("model %s returned dimension %d, want %d", model, len(vec), dimension)
	}

	return &Provider{
		name:      name,
		dimension: dimension,
		embedder:  embedder,
		logger:    slog.Default().With("component", "openai-provider", "provider", name),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Name identifies the backend.
func (p *Provider) Name() string {
	return p.name
}

// Dimension is the verified output vector length.
func (p *Provider) Dimension() int {
	return p.dimension
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying client doesn't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing provider")
	return nil
}
