package loader

import (
	"strings"

	"github.com/poiesic/harvester/sites"
)

// Strategy names a method of retrieving document content from a URL.
type Strategy string

const (
	// StrategyStandard is a plain HTTP fetch with element-mode extraction.
	StrategyStandard Strategy = "standard"
	// StrategyCSV downloads and parses a CSV file into per-row documents.
	StrategyCSV Strategy = "csv"
	// StrategyRecursive crawls same-origin pages up to a configured depth.
	StrategyRecursive Strategy = "recursive"
	// StrategyJSRender fetches through a headless browser, waiting for the
	// page to settle before extracting the DOM.
	StrategyJSRender Strategy = "jsrender"
	// StrategySkip marks a URL excluded by policy; no fetch is attempted.
	StrategySkip Strategy = "skip"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyStandard, StrategyCSV, StrategyRecursive, StrategyJSRender, StrategySkip:
		return true
	}
	return false
}

// SelectStrategy picks the fetch strategy for a URL. A non-empty forced
// strategy short-circuits selection entirely, including the skip check.
// Otherwise the first match wins: skip, CSV, recursive crawl, JS rendering,
// standard fetch.
func SelectStrategy(rawURL string, cfg *sites.Config, forced Strategy) Strategy {
	if forced != "" {
		return forced
	}
	if cfg.MatchesSkip(rawURL) {
		return StrategySkip
	}
	if IsCSVURL(rawURL) {
		return StrategyCSV
	}
	if _, ok := cfg.CrawlRuleFor(rawURL); ok {
		return StrategyRecursive
	}
	if cfg.NeedsJSRender(rawURL) {
		return StrategyJSRender
	}
	return StrategyStandard
}

// IsCSVURL reports whether the URL points at a CSV file, either directly or
// as a GitHub blob URL.
func IsCSVURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	if strings.HasSuffix(strings.SplitN(lower, "?", 2)[0], ".csv") {
		return true
	}
	return strings.Contains(lower, "github.com") &&
		strings.Contains(lower, "/blob/") &&
		strings.Contains(lower, ".csv")
}

// GitHubRawURL converts a GitHub blob URL to its raw.githubusercontent.com
// form so the file content can be downloaded directly. Non-GitHub URLs are
// returned unchanged.
func GitHubRawURL(rawURL string) string {
	if !strings.Contains(rawURL, "github.com") || !strings.Contains(rawURL, "/blob/") {
		return rawURL
	}
	out := strings.Replace(rawURL, "github.com", "raw.githubusercontent.com", 1)
	return strings.Replace(out, "/blob/", "/", 1)
}
