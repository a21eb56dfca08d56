package loader

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"
	"github.com/poiesic/harvester/core"
	"github.com/poiesic/harvester/sites"
)

// fetchRecursive crawls pages under the same origin as the seed URL, up to
// the rule's depth in link hops, extracting cleaned text per page. Colly's
// revisit filter deduplicates URLs within the crawl.
func (l *Loader) fetchRecursive(ctx context.Context, rawURL string, rule sites.CrawlRule) ([]core.RawDocument, error) {
	seed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse seed url: %w", err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(seed.Hostname()),
		// Colly counts the seed request as depth 1, so the configured hop
		// count maps to MaxDepth+1.
		colly.MaxDepth(rule.MaxDepth+1),
		colly.UserAgent(l.userAgent),
	)
	c.SetRequestTimeout(l.client.Timeout)

	var (
		mu   sync.Mutex
		docs []core.RawDocument
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		contentType := strings.ToLower(r.Headers.Get("Content-Type"))
		if contentType != "" && !strings.Contains(contentType, "html") {
			return
		}
		text := l.cleaner.CleanHTML(string(r.Body))
		if text == "" {
			return
		}
		mu.Lock()
		docs = append(docs, core.RawDocument{
			Content: text,
			Metadata: map[string]any{
				"source": r.Request.URL.String(),
				"depth":  r.Request.Depth,
			},
		})
		mu.Unlock()
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		// Visit errors (already visited, depth limit, forbidden domain)
		// just mean the link is not followed.
		_ = e.Request.Visit(link)
	})

	c.OnError(func(r *colly.Response, err error) {
		l.logger.Warn("crawl page failed", "url", r.Request.URL.String(), "err", err)
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, fmt.Errorf("crawl %s: %w", rawURL, err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
