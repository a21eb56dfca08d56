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


package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoProvider indicates that every backend in a fallback chain failed
// to initialize.
var ErrNoProvider = errors.New("no embedding provider available")

// ProviderSpec describes one candidate backend in a fallback chain.
type ProviderSpec struct {
	// Name identifies the backend in logs and run summaries.
	Name string

	// Dimension is the vector length the backend is expected to emit.
	Dimension int

	// New initializes the backend. A returned error moves the chain on
	// to the next spec.
	New func(ctx context.Context) (EmbeddingProvider, error)
}

// NewChain tries each spec in order and returns the first provider that
// initializes successfully. That provider is used for the remainder of
// the run. Returns ErrNoProvider if every spec fails.
func NewChain(ctx context.Context, specs []ProviderSpec, opts ...ChainOption) (EmbeddingProvider, error) {
	cfg := chainConfig{logger: slog.Default().With("component", "embedding-chain")}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(specs) == 0 {
		return nil, ErrNoProvider
	}

	var errs []error
	for _, spec := range specs {
		provider, err := spec.New(ctx)
		if err != nil {
			cfg.logger.Warn("embedding provider unavailable",
				"provider", spec.Name, "dimension", spec.Dimension, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", spec.Name, err))
			continue
		}
		cfg.logger.Info("embedding provider selected",
			"provider", provider.Name(), "dimension", provider.Dimension())
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrNoProvider, errors.Join(errs...))
}

type chainConfig struct {
	logger *slog.Logger
}

// ChainOption configures NewChain.
type ChainOption func(*chainConfig)

// WithChainLogger sets the logger used while walking the chain.
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(c *chainConfig) {
		c.logger = logger
	}
}
