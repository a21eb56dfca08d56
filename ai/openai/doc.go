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


// Package openai implements ai.EmbeddingProvider for OpenAI-compatible
// APIs using the langchaingo library. It works against OpenAI itself as
// well as local servers that speak the same protocol (Ollama, LocalAI,
// vLLM).
//
// Initialization probes the backend with a single embedding call and
// verifies the returned vector has the declared dimension, so a
// misconfigured model fails fast instead of poisoning a run.
//
// FallbackSpecs builds the standard chain for ai.NewChain: the remote
// model first, then two progressively smaller local models.
//
//	provider, err := ai.NewChain(ctx, openai.FallbackSpecs(cfg))
package openai
