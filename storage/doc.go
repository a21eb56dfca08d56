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


// Package storage provides the storage abstraction layer for Harvester.
//
// The DocumentStore interface decouples the ingestion pipeline from the
// concrete vector database. The production implementation lives in
// storage/postgres (PostgreSQL with the pgvector extension); tests use
// the function-field double in storage/mock.
//
// # Constructor Return Type Pattern
//
// Public constructors return the DocumentStore interface to enforce
// abstraction and keep consumers swappable between backends:
//
//	store, err := postgres.Open(ctx, dsn, dimension)  // returns storage.DocumentStore
//
// # Thread Safety
//
// All DocumentStore implementations must be safe for concurrent use
// from multiple goroutines.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout
// support.
package storage
