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


package mock

import "github.com/poiesic/harvester/ai"

// MockProvider is a test double for ai.EmbeddingProvider.
type MockProvider struct {
	embedder *MockEmbedder
	name     string
	closed   bool
}

var _ ai.EmbeddingProvider = (*MockProvider)(nil)

// NewMockProvider creates a mock provider with a default mock embedder
// at DefaultDimension.
//
// Returns the concrete type so tests can reach the underlying mock via
// GetMockEmbedder.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(DefaultDimension),
		name:     "mock",
	}
}

// NewMockProviderWithEmbedder creates a mock provider around a custom
// mock embedder.
func NewMockProviderWithEmbedder(embedder *MockEmbedder) *MockProvider {
	return &MockProvider{embedder: embedder, name: "mock"}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Name identifies the mock backend.
func (p *MockProvider) Name() string {
	return p.name
}

// Dimension returns the mock embedder's vector length.
func (p *MockProvider) Dimension() int {
	return p.embedder.Dimension()
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called, for lifecycle assertions.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEmbedder returns the underlying mock embedder for test
// assertions and behavior injection.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}
