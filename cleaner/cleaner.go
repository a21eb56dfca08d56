// Package cleaner strips boilerplate from fetched page content.
//
// HTML input is parsed and reduced to the primary informational body: script
// and style elements are dropped outright, a main-content container is
// located when one exists, and navigation, footer, cookie-banner, social and
// similar fragments are removed by tag, class, id and role heuristics. The
// surviving text then goes through the same plain-text cleanup applied to
// non-HTML input. The result may legitimately be empty; callers decide how
// to handle that.
package cleaner

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// Minimum text length before a main-content candidate is accepted.
	// Guards against empty shells like <main> wrappers around JS roots.
	minMainContentChars = 200

	// Containers with less text than this are treated as boilerplate
	// fragments that survived the keyword filter.
	minContainerChars = 100

	// Lines with this many words or fewer are dropped as menu fragments.
	maxDroppedLineWords = 2
)

// boilerplateKeywords flags elements whose class or id marks them as chrome
// rather than content.
var boilerplateKeywords = []string{
	"nav", "navigation", "footer", "header", "menu", "sidebar",
	"modal", "popup", "overlay", "cookie", "banner", "advert", "promo",
	"social", "share", "breadcrumb", "related", "comment", "subscribe",
	"newsletter", "analytics", "tracking", "widget",
}

// boilerplatePhrases match whole cleaned lines that carry no informational
// content: cookie and privacy notices, copyright lines, review dates.
var boilerplatePhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(we|this (web)?site) use[s]? cookies\b.*$`),
	regexp.MustCompile(`(?i)^accept (all )?cookies\b.*$`),
	regexp.MustCompile(`(?i)^(privacy policy|terms of (use|service)|cookie (policy|settings|preferences))$`),
	regexp.MustCompile(`(?i)^(©|copyright\b).*$`),
	regexp.MustCompile(`(?i)^(all rights reserved)\.?$`),
	regexp.MustCompile(`(?i)^last (reviewed|updated|modified)\b.*$`),
	regexp.MustCompile(`(?i)^skip to (main )?content$`),
}

var whitespaceRun = regexp.MustCompile(`[ \t\f\v]+`)

// blockTags produce a line break when flattening an HTML subtree to text.
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "section": {}, "article": {}, "main": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"li": {}, "ul": {}, "ol": {}, "dl": {}, "dt": {}, "dd": {},
	"table": {}, "tr": {}, "td": {}, "th": {},
	"blockquote": {}, "pre": {}, "br": {}, "hr": {}, "figure": {},
}

// Cleaner strips boilerplate from HTML or plain text.
// The zero configuration from New is suitable for most pages.
type Cleaner struct {
	logger *slog.Logger
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cleaner) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Cleaner.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{
		logger: slog.Default().With("component", "cleaner"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CleanHTML parses raw HTML and returns the cleaned plain text of its
// primary content. Unparseable input falls back to plain-text cleaning.
func (c *Cleaner) CleanHTML(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		c.logger.Debug("html parse failed, cleaning as text", "err", err)
		return c.CleanText(raw)
	}

	doc.Find("script, style, meta, link, noscript").Remove()

	root := c.findMainContent(doc)
	if root == nil {
		root = doc.Find("body")
		if root.Length() == 0 {
			root = doc.Selection
		}
	}

	c.removeBoilerplate(root)
	c.pruneSmallContainers(root)

	return c.CleanText(flattenText(root))
}

// CleanText applies the text-level cleanup shared by HTML and non-HTML
// input: whitespace collapsing, boilerplate phrase removal, and dropping of
// short menu-fragment lines.
func (c *Cleaner) CleanText(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	cleaned := make([]string, 0, len(lines))

lineLoop:
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		for _, phrase := range boilerplatePhrases {
			if phrase.MatchString(line) {
				continue lineLoop
			}
		}
		if len(strings.Fields(line)) <= maxDroppedLineWords {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

// findMainContent scans, in priority order, for a main-content container
// with enough text to be trusted. Returns nil when no candidate qualifies.
func (c *Cleaner) findMainContent(doc *goquery.Document) *goquery.Selection {
	candidates := []func() *goquery.Selection{
		func() *goquery.Selection { return doc.Find("main").First() },
		func() *goquery.Selection { return doc.Find("article").First() },
		func() *goquery.Selection {
			return doc.Find("div, section").FilterFunction(func(_ int, s *goquery.Selection) bool {
				marker := strings.ToLower(s.AttrOr("class", "") + " " + s.AttrOr("id", ""))
				return strings.Contains(marker, "main") || strings.Contains(marker, "content")
			}).First()
		},
	}

	for _, candidate := range candidates {
		sel := candidate()
		if sel.Length() == 0 {
			continue
		}
		if len(strings.TrimSpace(sel.Text())) > minMainContentChars {
			return sel
		}
	}
	return nil
}

// removeBoilerplate drops elements classified as page chrome from the
// subtree: structural tags, keyword-flagged classes and ids, and ARIA
// navigation roles.
func (c *Cleaner) removeBoilerplate(root *goquery.Selection) {
	root.Find("header, footer, nav, aside").Remove()
	root.Find(`[role="navigation"], [role="complementary"]`).Remove()

	root.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		marker := strings.ToLower(s.AttrOr("class", "") + " " + s.AttrOr("id", ""))
		if marker == " " {
			return false
		}
		for _, keyword := range boilerplateKeywords {
			if strings.Contains(marker, keyword) {
				return true
			}
		}
		return false
	}).Remove()
}

// pruneSmallContainers removes div/section elements whose surviving text is
// too short to be content. Small boilerplate fragments otherwise slip past
// the keyword filter.
func (c *Cleaner) pruneSmallContainers(root *goquery.Selection) {
	root.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		if len(strings.TrimSpace(s.Text())) < minContainerChars {
			s.Remove()
		}
	})
}

// flattenText renders a selection's text with line breaks after block-level
// elements, preserving the line structure the text cleanup relies on.
func flattenText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, node := range sel.Nodes {
		flattenNode(&b, node)
	}
	return b.String()
}

func flattenNode(b *strings.Builder, node *html.Node) {
	if node.Type == html.TextNode {
		b.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		flattenNode(b, child)
	}
	if node.Type == html.ElementNode {
		if _, ok := blockTags[node.Data]; ok {
			b.WriteByte('\n')
		}
	}
}
