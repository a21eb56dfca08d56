package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://api.openai.com/v1", cfg.RemoteHost)
	assert.Equal(t, "text-embedding-3-small", cfg.RemoteModel)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
	assert.Empty(t, cfg.APIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, "https://api.openai.com/v1", cfg.RemoteHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
	})

	t.Run("with custom hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithRemoteHost("https://embed.example/v1"),
			WithLocalHost("http://ollama:11434/v1"),
		)

		assert.Equal(t, "https://embed.example/v1", cfg.RemoteHost)
		assert.Equal(t, "http://ollama:11434/v1", cfg.LocalHost)
	})

	t.Run("with model and key", func(t *testing.T) {
		cfg := NewConfig(
			WithRemoteModel("text-embedding-3-large"),
			WithAPIKey("sk-test"),
		)

		assert.Equal(t, "text-embedding-3-large", cfg.RemoteModel)
		assert.Equal(t, "sk-test", cfg.APIKey)
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := NewConfig(
			WithRemoteHost("https://api.example.com"),
			WithLocalHost("http://localhost:11434/"),
		)
		cfg.Normalize()

		assert.Equal(t, "https://api.example.com/v1", cfg.RemoteHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
	})

	t.Run("leaves v1 suffix alone", func(t *testing.T) {
		cfg := NewConfig(WithLocalHost("http://localhost:11434/v1"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
	})

	t.Run("empty host stays empty", func(t *testing.T) {
		cfg := &Config{}
		cfg.Normalize()

		assert.Empty(t, cfg.RemoteHost)
		assert.Empty(t, cfg.LocalHost)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, NewConfig().Validate())
	})

	t.Run("missing local host", func(t *testing.T) {
		cfg := &Config{RemoteHost: "https://api.example.com/v1", RemoteModel: "m"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("remote host without model", func(t *testing.T) {
		cfg := &Config{RemoteHost: "https://api.example.com", LocalHost: "http://localhost:11434"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("local only is valid", func(t *testing.T) {
		cfg := &Config{LocalHost: "http://localhost:11434"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
	})
}
