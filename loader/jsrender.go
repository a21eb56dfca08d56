package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/poiesic/harvester/core"
)

// stripBoilerplateJS removes the larger DOM-level boilerplate set before
// extraction. Rendered single-page apps tend to re-insert chrome that the
// HTML-level cleaner would otherwise have to chase.
const stripBoilerplateJS = `
	document.querySelectorAll(
		'script, style, noscript, iframe, svg, header, footer, nav, aside,' +
		'[role="navigation"], [role="complementary"], [role="banner"],' +
		'[class*="cookie"], [id*="cookie"], [class*="banner"],' +
		'[class*="modal"], [class*="popup"], [class*="overlay"]'
	).forEach(el => el.remove());
	true;
`

// defaultHeavyJSDomains get the longer settle time before DOM extraction.
var defaultHeavyJSDomains = []string{
	"tableau",
	"powerbi",
	"lookerstudio",
	"observablehq",
}

// fetchJSRender loads the page in a headless browser, waits for scripts to
// settle, strips boilerplate at the DOM level, and extracts the remaining
// text through the cleaner.
func (l *Loader) fetchJSRender(ctx context.Context, rawURL string) ([]core.RawDocument, error) {
	wait := l.jsWaitFor(rawURL)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, wait+l.client.Timeout)
	defer cancelRun()

	l.logger.Debug("rendering page", "url", rawURL, "settle", wait)

	var pageHTML string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.Sleep(wait),
		chromedp.Evaluate(stripBoilerplateJS, nil),
		chromedp.OuterHTML("html", &pageHTML),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", rawURL, err)
	}

	text := l.cleaner.CleanHTML(pageHTML)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return []core.RawDocument{{
		Content: text,
		Metadata: map[string]any{
			"source":   rawURL,
			"rendered": true,
		},
	}}, nil
}

// jsWaitFor returns the settle time for a URL: the heavy-site wait when any
// heavy pattern matches, the baseline otherwise.
func (l *Loader) jsWaitFor(rawURL string) time.Duration {
	patterns := l.heavyJSDomains
	if patterns == nil {
		patterns = defaultHeavyJSDomains
	}
	for _, pattern := range patterns {
		if strings.Contains(rawURL, pattern) {
			return l.jsHeavyWait
		}
	}
	return l.jsBaseWait
}
