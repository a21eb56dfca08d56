// Package sites classifies URLs for loader strategy selection.
//
// Three newline-delimited files drive classification: prefixes that should be
// crawled recursively (with an optional depth), domain patterns that require
// JS rendering, and patterns that must be skipped outright. Missing files are
// not an error; each one simply yields an empty list so a run can proceed
// with whatever policy is present.
package sites

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const defaultCrawlDepth = 1

// CrawlRule pairs a URL prefix with the maximum crawl depth for pages
// underneath it.
type CrawlRule struct {
	Prefix   string
	MaxDepth int
}

// Paths names the three classification files.
type Paths struct {
	Recursive string // lines: <url-prefix>[ <depth:int>]
	JSRender  string // lines: substring patterns
	Skip      string // lines: substring patterns
}

// Config holds the loaded classification lists. It is immutable after Load;
// call Reload to pick up file changes.
type Config struct {
	paths      Paths
	crawlRules []CrawlRule
	jsPatterns []string
	skips      []string
	logger     *slog.Logger
}

// Option configures a Config.
type Option func(*Config)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Load reads the three classification files. Missing files yield empty lists
// and are logged at debug level; malformed depth values fall back to the
// default depth with a warning. Neither condition is fatal.
func Load(paths Paths, opts ...Option) (*Config, error) {
	c := &Config{
		paths:  paths,
		logger: slog.Default().With("component", "sites"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads all three files, replacing the in-memory lists.
func (c *Config) Reload() error {
	crawlLines, err := c.readLines(c.paths.Recursive)
	if err != nil {
		return fmt.Errorf("recursive sites: %w", err)
	}
	jsLines, err := c.readLines(c.paths.JSRender)
	if err != nil {
		return fmt.Errorf("js render sites: %w", err)
	}
	skipLines, err := c.readLines(c.paths.Skip)
	if err != nil {
		return fmt.Errorf("skip sites: %w", err)
	}

	rules := make([]CrawlRule, 0, len(crawlLines))
	for _, line := range crawlLines {
		rules = append(rules, c.parseCrawlLine(line))
	}

	c.crawlRules = rules
	c.jsPatterns = jsLines
	c.skips = skipLines
	return nil
}

// MatchesSkip reports whether the URL matches any skip pattern.
// Matching is simple substring containment, checked in file order.
func (c *Config) MatchesSkip(url string) bool {
	for _, pattern := range c.skips {
		if strings.Contains(url, pattern) {
			return true
		}
	}
	return false
}

// NeedsJSRender reports whether the URL matches any JS-rendering pattern.
func (c *Config) NeedsJSRender(url string) bool {
	for _, pattern := range c.jsPatterns {
		if strings.Contains(url, pattern) {
			return true
		}
	}
	return false
}

// CrawlRuleFor returns the first crawl rule whose prefix matches the URL,
// in file order.
func (c *Config) CrawlRuleFor(url string) (CrawlRule, bool) {
	for _, rule := range c.crawlRules {
		if strings.HasPrefix(url, rule.Prefix) {
			return rule, true
		}
	}
	return CrawlRule{}, false
}

// CrawlRules returns a copy of the loaded crawl rules.
func (c *Config) CrawlRules() []CrawlRule {
	out := make([]CrawlRule, len(c.crawlRules))
	copy(out, c.crawlRules)
	return out
}

// parseCrawlLine parses "<prefix> [depth]". A malformed depth is logged and
// replaced with the default rather than failing the load.
func (c *Config) parseCrawlLine(line string) CrawlRule {
	fields := strings.Fields(line)
	rule := CrawlRule{Prefix: fields[0], MaxDepth: defaultCrawlDepth}
	if len(fields) > 1 {
		depth, err := strconv.Atoi(fields[1])
		if err != nil || depth < 1 {
			c.logger.Warn("malformed crawl depth, using default",
				"line", line, "default", defaultCrawlDepth)
			return rule
		}
		rule.MaxDepth = depth
	}
	return rule
}

// readLines reads a file line by line, skipping blanks and #-comments.
// A missing file yields nil lines and no error.
func (c *Config) readLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Debug("site list not present", "path", path)
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
