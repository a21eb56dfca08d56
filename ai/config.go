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
	"errors"
	"strings"
)

// Config holds configuration for the embedding backends.
type Config struct {
	// RemoteHost is the base URL of the primary remote embedding API.
	// Example: "https://api.openai.com/v1"
	RemoteHost string

	// RemoteModel is the model identifier used on the remote host.
	// Example: "text-embedding-3-small"
	RemoteModel string

	// APIKey authenticates against the remote host. When empty, the
	// remote backend is unavailable and the fallback chain moves on to
	// the local hosts.
	APIKey string

	// LocalHost is the base URL of a local OpenAI-compatible server
	// used by the fallback backends.
	// Example: "http://localhost:11434/v1" for Ollama
	LocalHost string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithRemoteHost sets the remote embedding service host URL.
func WithRemoteHost(host string) ConfigOption {
	return func(c *Config) {
		c.RemoteHost = host
	}
}

// WithRemoteModel sets the remote embedding model identifier.
func WithRemoteModel(model string) ConfigOption {
	return func(c *Config) {
		c.RemoteModel = model
	}
}

// WithAPIKey sets the remote service API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithLocalHost sets the local embedding service host URL.
func WithLocalHost(host string) ConfigOption {
	return func(c *Config) {
		c.LocalHost = host
	}
}

// DefaultConfig returns a Config targeting OpenAI remotely and a local
// Ollama instance for the fallbacks.
func DefaultConfig() *Config {
	return &Config{
		RemoteHost:  "https://api.openai.com/v1",
		RemoteModel: "text-embedding-3-small",
		LocalHost:   "http://localhost:11434/v1",
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. Hosts get
// the /v1 suffix required by OpenAI-compatible APIs (Ollama, LocalAI,
// vLLM) when it is missing.
func (c *Config) Normalize() {
	c.RemoteHost = normalizeHost(c.RemoteHost)
	c.LocalHost = normalizeHost(c.LocalHost)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.LocalHost == "" {
		return errors.New("ai config: LocalHost is required")
	}
	if c.RemoteHost != "" && c.RemoteModel == "" {
		return errors.New("ai config: RemoteModel is required when RemoteHost is set")
	}
	return nil
}
