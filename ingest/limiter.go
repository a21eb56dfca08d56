package ingest

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// domainLimiter hands out one token bucket per hostname. A lone slow
// domain throttles only its own URLs.
type domainLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

func newDomainLimiter(interval time.Duration, burst int) *domainLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &domainLimiter{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (d *domainLimiter) Wait(ctx context.Context, rawURL string) error {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	d.mu.Lock()
	bucket, ok := d.buckets[host]
	if !ok {
		bucket = rate.NewLimiter(d.limit, d.burst)
		d.buckets[host] = bucket
	}
	d.mu.Unlock()

	return bucket.Wait(ctx)
}
