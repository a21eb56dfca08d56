// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package loader fetches raw documents from URLs using a per-URL strategy.
//
// Strategy selection is a pure function over the site configuration; the
// Loader then executes the selected strategy with a single retry when a
// fetch yields no documents. Every Fetch call, successful or not, is
// followed by a fixed rate-limit pause before control returns to the
// caller, so back-to-back calls cannot hammer a target site.
//
// A JS-rendering failure does not fall back to a standard fetch here; that
// cross-strategy fallback belongs to the orchestrator, which would otherwise
// see contradictory strategy attempts from a single call.
package loader

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/harvester/cleaner"
	"github.com/poiesic/harvester/core"
	"github.com/poiesic/harvester/loader/cache"
	"github.com/poiesic/harvester/sites"
)

const (
	defaultFetchTimeout    = 30 * time.Second
	defaultEmptyRetryDelay = 5 * time.Second
	defaultExitDelay       = 1 * time.Second
	defaultUserAgent       = "harvester/1.0 (+https://github.com/poiesic/harvester)"
)

// Result is the outcome of fetching one URL.
type Result struct {
	Documents []core.RawDocument
	Strategy  Strategy
	OK        bool
	Reason    string // human-readable failure reason when !OK
}

// Loader selects and executes fetch strategies. It is stateless across
// calls apart from the optional page cache and is safe for concurrent use.
type Loader struct {
	sites           *sites.Config
	cleaner         *cleaner.Cleaner
	client          *http.Client
	cache           *cache.Cache
	userAgent       string
	emptyRetryDelay time.Duration
	exitDelay       time.Duration
	jsBaseWait      time.Duration
	jsHeavyWait     time.Duration
	heavyJSDomains  []string
	logger          *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client used for standard and CSV fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithCache attaches a fetched-page cache used by the standard strategy.
func WithCache(c *cache.Cache) Option {
	return func(l *Loader) {
		l.cache = c
	}
}

// WithExitDelay sets the fixed pause applied after every Fetch call.
func WithExitDelay(d time.Duration) Option {
	return func(l *Loader) {
		if d >= 0 {
			l.exitDelay = d
		}
	}
}

// WithEmptyRetryDelay sets the wait before the single empty-result retry.
func WithEmptyRetryDelay(d time.Duration) Option {
	return func(l *Loader) {
		if d >= 0 {
			l.emptyRetryDelay = d
		}
	}
}

// WithUserAgent sets the User-Agent header for all fetches.
func WithUserAgent(ua string) Option {
	return func(l *Loader) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithHeavyJSDomains sets URL patterns granted the longer JS settle time.
func WithHeavyJSDomains(patterns []string) Option {
	return func(l *Loader) {
		l.heavyJSDomains = patterns
	}
}

// New creates a Loader over the given site configuration and cleaner.
func New(siteCfg *sites.Config, cl *cleaner.Cleaner, opts ...Option) *Loader {
	l := &Loader{
		sites:           siteCfg,
		cleaner:         cl,
		client:          &http.Client{Timeout: defaultFetchTimeout},
		userAgent:       defaultUserAgent,
		emptyRetryDelay: defaultEmptyRetryDelay,
		exitDelay:       defaultExitDelay,
		jsBaseWait:      10 * time.Second,
		jsHeavyWait:     12 * time.Second,
		logger:          slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch retrieves documents for one URL. The strategy is selected from the
// site configuration unless forced is non-empty. The fixed exit delay runs
// on every return path, including failures.
func (l *Loader) Fetch(ctx context.Context, rawURL string, forced Strategy) Result {
	defer l.pause(ctx)

	strategy := SelectStrategy(rawURL, l.sites, forced)
	log := l.logger.With("url", rawURL, "strategy", string(strategy))

	if strategy == StrategySkip {
		log.Info("url matches skip list, not fetching")
		return Result{Strategy: StrategySkip, Reason: ReasonSkipped}
	}
	if !strategy.Valid() {
		return Result{Strategy: strategy, Reason: ErrUnsupportedStrategy.Error()}
	}

	// CSV downloads are not retried on empty: an empty CSV parses to zero
	// rows deterministically, a second download cannot change that.
	if strategy == StrategyCSV {
		docs, err := l.fetchCSV(ctx, rawURL)
		return l.finish(log, strategy, docs, err)
	}

	docs, err := l.fetchOnce(ctx, rawURL, strategy)
	if err == nil && len(docs) == 0 {
		log.Warn("fetch returned no documents, retrying once", "delay", l.emptyRetryDelay)
		if waitErr := sleepCtx(ctx, l.emptyRetryDelay); waitErr != nil {
			return Result{Strategy: strategy, Reason: waitErr.Error()}
		}
		docs, err = l.fetchOnce(ctx, rawURL, strategy)
	}
	return l.finish(log, strategy, docs, err)
}

func (l *Loader) fetchOnce(ctx context.Context, rawURL string, strategy Strategy) ([]core.RawDocument, error) {
	switch strategy {
	case StrategyRecursive:
		rule, ok := l.sites.CrawlRuleFor(rawURL)
		if !ok {
			rule = sites.CrawlRule{Prefix: rawURL, MaxDepth: 1}
		}
		return l.fetchRecursive(ctx, rawURL, rule)
	case StrategyJSRender:
		return l.fetchJSRender(ctx, rawURL)
	case StrategyStandard:
		return l.fetchStandard(ctx, rawURL)
	default:
		return nil, ErrUnsupportedStrategy
	}
}

func (l *Loader) finish(log *slog.Logger, strategy Strategy, docs []core.RawDocument, err error) Result {
	if err != nil {
		log.Warn("fetch failed", "err", err)
		return Result{Strategy: strategy, Reason: err.Error()}
	}
	if len(docs) == 0 {
		log.Warn("fetch yielded no documents")
		return Result{Strategy: strategy, Reason: ErrEmptyDocuments.Error()}
	}
	log.Info("fetch complete", "documents", len(docs))
	return Result{Documents: docs, Strategy: strategy, OK: true}
}

// pause enforces the fixed rate-limit delay on every exit path.
func (l *Loader) pause(ctx context.Context) {
	_ = sleepCtx(ctx, l.exitDelay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
