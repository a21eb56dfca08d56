package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/poiesic/harvester/core"
	"github.com/poiesic/harvester/loader/cache"
)

// contentElements is the selector set for element-mode extraction: the tags
// that carry readable page content.
const contentElements = "h1, h2, h3, h4, h5, h6, p, li, dd, dt, td, th, pre, blockquote"

// fetchStandard performs a plain HTTP fetch and extracts text element by
// element. The page cache, when attached, short-circuits the network fetch
// for recently seen URLs.
func (l *Loader) fetchStandard(ctx context.Context, rawURL string) ([]core.RawDocument, error) {
	body, fromCache, err := l.pageBody(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find(contentElements).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	text := strings.Join(parts, "\n")
	if strings.TrimSpace(text) == "" {
		// Element extraction found nothing; let the cleaner try the whole page.
		text = l.cleaner.CleanHTML(body)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	return []core.RawDocument{{
		Content: text,
		Metadata: map[string]any{
			"source":     rawURL,
			"title":      title,
			"from_cache": fromCache,
		},
	}}, nil
}

// pageBody returns the page body, consulting the cache first when one is
// attached. Fetched bodies are written back to the cache best-effort.
func (l *Loader) pageBody(ctx context.Context, rawURL string) (string, bool, error) {
	if l.cache != nil {
		if page, ok := l.cache.Get(rawURL); ok {
			l.logger.Debug("cache hit", "url", rawURL, "fetched_at", page.FetchedAt)
			return page.Body, true, nil
		}
	}

	body, err := l.get(ctx, rawURL)
	if err != nil {
		return "", false, err
	}

	if l.cache != nil {
		if err := l.cache.Put(&cache.Page{URL: rawURL, Body: body, FetchedAt: time.Now().UTC()}); err != nil {
			l.logger.Warn("cache write failed", "url", rawURL, "err", err)
		}
	}
	return body, false, nil
}

// get issues a GET with the loader's user agent and returns the body.
func (l *Loader) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d for %s", ErrHTTPStatus, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}
