package process

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/poiesic/harvester/core"
)

type fetchFunc func(ctx context.Context, rawURL string) (string, error)

// socialDomains are never recorded as outbound links; share widgets add
// them to nearly every page.
var socialDomains = []string{
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"linkedin.com",
	"youtube.com",
	"tiktok.com",
	"pinterest.com",
	"reddit.com",
}

var skipSchemes = []string{"mailto:", "tel:", "javascript:", "data:"}

var linkClient = &http.Client{Timeout: 30 * time.Second}

func defaultFetchHTML(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := linkClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d fetching %s", resp.StatusCode, rawURL)
	}
	body, err := io.ReadAll(resp.Body)
	return string(body), err
}

// extractLinks fetches the original page once and collects its anchor
// targets: fragment-only links, non-web schemes and social domains are
// filtered, relative URLs resolved against the page, and duplicates dropped
// preserving first-seen order. Extraction failure is not a processing
// failure; the page simply contributes no links.
func (p *Processor) extractLinks(ctx context.Context, sourceURL, loaderType string) []core.LinkRecord {
	body, err := p.fetchHTML(ctx, sourceURL)
	if err != nil {
		p.logger.Debug("link extraction fetch failed", "url", sourceURL, "err", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		p.logger.Debug("link extraction parse failed", "url", sourceURL, "err", err)
		return nil
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []core.LinkRecord

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		lower := strings.ToLower(href)
		for _, scheme := range skipSchemes {
			if strings.HasPrefix(lower, scheme) {
				return
			}
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		target := base.ResolveReference(ref)
		if target.Scheme != "http" && target.Scheme != "https" {
			return
		}
		target.Fragment = ""

		if isSocialDomain(target.Hostname()) {
			return
		}

		key := target.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links = append(links, core.LinkRecord{
			TargetURL:  key,
			SourceURL:  sourceURL,
			LoaderType: loaderType,
		})
	})

	return links
}

func isSocialDomain(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range socialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
