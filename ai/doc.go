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


// Package ai provides abstractions for the embedding services used by
// Harvester.
//
// The package defines two interfaces:
//
//   - Embedder: generates vector embeddings from text
//   - EmbeddingProvider: an initialized embedding backend carrying its
//     name and fixed output dimension
//
// Concrete backends live in sub-packages:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//     (OpenAI itself, Ollama, LocalAI, vLLM)
//   - ai/mock: test doubles for unit testing without external services
//
// # Provider Fallback Chain
//
// Production setups rarely have every backend available, so providers
// are initialized through an ordered fallback chain: NewChain walks a
// list of ProviderSpec entries and returns the first one whose
// constructor succeeds. The chosen provider is then used for the whole
// run; there is no per-call re-negotiation, which keeps every vector in
// a run at the same dimension.
//
//	specs := openai.FallbackSpecs(cfg)
//	provider, err := ai.NewChain(ctx, specs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "sample text")
package ai
