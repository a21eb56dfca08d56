package sites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSiteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func testPaths(t *testing.T, recursive, jsrender, skip string) Paths {
	dir := t.TempDir()
	return Paths{
		Recursive: writeSiteFile(t, dir, "recursive_sites.txt", recursive),
		JSRender:  writeSiteFile(t, dir, "playwright_sites.txt", jsrender),
		Skip:      writeSiteFile(t, dir, "skip_sites.txt", skip),
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load(testPaths(t,
		"https://docs.example.org/guide 3\nhttps://wiki.example.org\n# comment\n\n",
		"app.example.com\n",
		"blocked.example\ntracker.example\n",
	))
	require.NoError(t, err)

	rules := cfg.CrawlRules()
	require.Len(t, rules, 2)
	assert.Equal(t, CrawlRule{Prefix: "https://docs.example.org/guide", MaxDepth: 3}, rules[0])
	assert.Equal(t, CrawlRule{Prefix: "https://wiki.example.org", MaxDepth: 1}, rules[1])
}

func TestLoadMissingFiles(t *testing.T) {
	cfg, err := Load(Paths{
		Recursive: filepath.Join(t.TempDir(), "nope.txt"),
		JSRender:  filepath.Join(t.TempDir(), "nope.txt"),
		Skip:      filepath.Join(t.TempDir(), "nope.txt"),
	})
	require.NoError(t, err)
	assert.Empty(t, cfg.CrawlRules())
	assert.False(t, cfg.MatchesSkip("https://anything.example"))
	assert.False(t, cfg.NeedsJSRender("https://anything.example"))
}

func TestLoadEmptyPaths(t *testing.T) {
	cfg, err := Load(Paths{})
	require.NoError(t, err)
	assert.Empty(t, cfg.CrawlRules())
}

func TestMalformedDepthDefaultsToOne(t *testing.T) {
	cfg, err := Load(testPaths(t, "https://docs.example.org abc\n", "", ""))
	require.NoError(t, err)

	rule, ok := cfg.CrawlRuleFor("https://docs.example.org/page")
	require.True(t, ok)
	assert.Equal(t, 1, rule.MaxDepth)
}

func TestMatchesSkip(t *testing.T) {
	cfg, err := Load(testPaths(t, "", "", "blocked.example\n"))
	require.NoError(t, err)

	assert.True(t, cfg.MatchesSkip("https://blocked.example/path"))
	assert.False(t, cfg.MatchesSkip("https://open.example/path"))
}

func TestNeedsJSRender(t *testing.T) {
	cfg, err := Load(testPaths(t, "", "app.example.com\n", ""))
	require.NoError(t, err)

	assert.True(t, cfg.NeedsJSRender("https://app.example.com/dashboard"))
	assert.False(t, cfg.NeedsJSRender("https://static.example.com/docs"))
}

func TestCrawlRuleFirstMatchWins(t *testing.T) {
	cfg, err := Load(testPaths(t,
		"https://docs.example.org 5\nhttps://docs.example.org/guide 2\n", "", ""))
	require.NoError(t, err)

	rule, ok := cfg.CrawlRuleFor("https://docs.example.org/guide/intro")
	require.True(t, ok)
	assert.Equal(t, 5, rule.MaxDepth)
}

func TestReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	skipPath := writeSiteFile(t, dir, "skip_sites.txt", "old.example\n")
	cfg, err := Load(Paths{Skip: skipPath})
	require.NoError(t, err)
	require.True(t, cfg.MatchesSkip("https://old.example/x"))

	require.NoError(t, os.WriteFile(skipPath, []byte("new.example\n"), 0644))
	require.NoError(t, cfg.Reload())
	assert.False(t, cfg.MatchesSkip("https://old.example/x"))
	assert.True(t, cfg.MatchesSkip("https://new.example/x"))
}
