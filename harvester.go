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


package harvester

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/harvester/ai"
	"github.com/poiesic/harvester/ai/openai"
	"github.com/poiesic/harvester/reembed"
	"github.com/poiesic/harvester/search"
	"github.com/poiesic/harvester/storage"
	"github.com/poiesic/harvester/storage/postgres"
	"github.com/poiesic/harvester/upload"
)

// Harvester bundles the embedding provider and the document store behind
// a single handle. It is the entry point for callers that want the wired
// stack without assembling each layer themselves.
type Harvester struct {
	provider ai.EmbeddingProvider
	store    storage.DocumentStore
	logger   *slog.Logger
}

// HarvesterOption configures a Harvester.
type HarvesterOption func(*harvesterOptions)

type harvesterOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the embedding backend configuration.
func WithAIConfig(cfg *ai.Config) HarvesterOption {
	return func(o *harvesterOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// Open resolves an embedding provider through the fallback chain, then
// opens the document store with the provider's vector dimension. The
// store's schema is bootstrapped on first open.
func Open(ctx context.Context, dsn string, opts ...HarvesterOption) (*Harvester, error) {
	// Apply options
	options := &harvesterOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	provider, err := ai.NewChain(ctx, openai.FallbackSpecs(options.aiConfig))
	if err != nil {
		return nil, err
	}

	store, err := postgres.Open(ctx, dsn, provider.Dimension())
	if err != nil {
		provider.Close()
		return nil, err
	}

	return &Harvester{
		provider: provider,
		store:    store,
		logger:   slog.Default(),
	}, nil
}

func (h *Harvester) Close() error {
	// Close AI provider first
	if err := h.provider.Close(); err != nil {
		h.logger.Error("error closing embedding provider", "err", err)
	}

	if err := h.store.Close(); err != nil {
		h.logger.Error("error closing document store", "err", err)
		return err
	}
	return nil
}

// Provider returns the resolved embedding provider.
func (h *Harvester) Provider() ai.EmbeddingProvider {
	return h.provider
}

// Store returns the document store.
func (h *Harvester) Store() storage.DocumentStore {
	return h.store
}

func (h *Harvester) NewUploader(opts ...upload.Option) *upload.Uploader {
	return upload.New(h.provider, h.store, opts...)
}

func (h *Harvester) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(h.store, h.provider, opts...)
}

func (h *Harvester) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(h.store, h.provider.Embedder(), config, progress)
}
