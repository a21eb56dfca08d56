package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/harvester/sites"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteConfig(t *testing.T, recursive, jsrender, skip string) *sites.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, contents string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
		return path
	}
	cfg, err := sites.Load(sites.Paths{
		Recursive: write("recursive.txt", recursive),
		JSRender:  write("jsrender.txt", jsrender),
		Skip:      write("skip.txt", skip),
	})
	require.NoError(t, err)
	return cfg
}

func TestSelectStrategy(t *testing.T) {
	cfg := siteConfig(t,
		"https://docs.example.org 2\n",
		"app.example.com\n",
		"blocked.example\n",
	)

	tests := []struct {
		name   string
		url    string
		forced Strategy
		want   Strategy
	}{
		{"skip wins first", "https://blocked.example/path", "", StrategySkip},
		{"csv by suffix", "https://data.example.org/file.csv", "", StrategyCSV},
		{"csv github blob", "https://github.com/org/repo/blob/main/data.csv", "", StrategyCSV},
		{"recursive prefix", "https://docs.example.org/guide", "", StrategyRecursive},
		{"js render pattern", "https://app.example.com/dash", "", StrategyJSRender},
		{"standard fallthrough", "https://plain.example.org/page", "", StrategyStandard},
		{"forced overrides selection", "https://docs.example.org/guide", StrategyStandard, StrategyStandard},
		{"forced overrides skip", "https://blocked.example/path", StrategyJSRender, StrategyJSRender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategy(tt.url, cfg, tt.forced))
		})
	}
}

func TestSelectStrategySkipBeforeCSV(t *testing.T) {
	cfg := siteConfig(t, "", "", "blocked.example\n")
	got := SelectStrategy("https://blocked.example/data.csv", cfg, "")
	assert.Equal(t, StrategySkip, got)
}

func TestIsCSVURL(t *testing.T) {
	assert.True(t, IsCSVURL("https://data.example.org/rows.csv"))
	assert.True(t, IsCSVURL("https://data.example.org/ROWS.CSV"))
	assert.True(t, IsCSVURL("https://data.example.org/rows.csv?version=2"))
	assert.True(t, IsCSVURL("https://github.com/org/repo/blob/main/rows.csv"))
	assert.False(t, IsCSVURL("https://data.example.org/rows.csv.html"))
	assert.False(t, IsCSVURL("https://data.example.org/page"))
}

func TestGitHubRawURL(t *testing.T) {
	got := GitHubRawURL("https://github.com/org/repo/blob/main/data/rows.csv")
	assert.Equal(t, "https://raw.githubusercontent.com/org/repo/main/data/rows.csv", got)

	unchanged := "https://data.example.org/rows.csv"
	assert.Equal(t, unchanged, GitHubRawURL(unchanged))
}

func TestStrategyValid(t *testing.T) {
	assert.True(t, StrategyStandard.Valid())
	assert.True(t, StrategyJSRender.Valid())
	assert.False(t, Strategy("playwright").Valid())
	assert.False(t, Strategy("").Valid())
}
