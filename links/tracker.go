// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package links accumulates the outbound links discovered while pages
// are processed and persists them as a per-source report file.
package links

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/harvester/core"
)

// Tracker collects outbound links per source URL. A (source, target)
// pair is recorded at most once; first-seen order is preserved within
// each source. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	bySrc  map[string][]core.LinkRecord
	seen   map[string]struct{}
	order  []string
	logger *slog.Logger
	total  int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used by the tracker.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// NewTracker returns an empty Tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		bySrc:  make(map[string][]core.LinkRecord),
		seen:   make(map[string]struct{}),
		logger: slog.Default().With("component", "linktracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add merges the given records into the tracker, dropping any
// (source, target) pair already present.
func (t *Tracker) Add(records []core.LinkRecord) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	added := 0
	for _, rec := range records {
		if rec.SourceURL == "" || rec.TargetURL == "" {
			continue
		}
		key := rec.SourceURL + "\x00" + rec.TargetURL
		if _, dup := t.seen[key]; dup {
			continue
		}
		t.seen[key] = struct{}{}
		if _, ok := t.bySrc[rec.SourceURL]; !ok {
			t.order = append(t.order, rec.SourceURL)
		}
		t.bySrc[rec.SourceURL] = append(t.bySrc[rec.SourceURL], rec)
		t.total++
		added++
	}
	return added
}

// Links returns the records for one source in first-seen order.
func (t *Tracker) Links(source string) []core.LinkRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]core.LinkRecord, len(t.bySrc[source]))
	copy(out, t.bySrc[source])
	return out
}

// All returns every record, grouped by source in the order sources
// were first seen.
func (t *Tracker) All() []core.LinkRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]core.LinkRecord, 0, t.total)
	for _, src := range t.order {
		out = append(out, t.bySrc[src]...)
	}
	return out
}

// Sources returns the tracked source URLs in first-seen order.
func (t *Tracker) Sources() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// TotalLinks reports the number of unique (source, target) pairs.
func (t *Tracker) TotalLinks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Write emits the link report, one block per source URL.
func (t *Tracker) Write(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	for _, src := range t.order {
		recs := t.bySrc[src]
		fmt.Fprintf(&b, "SOURCE: %s\n", src)
		fmt.Fprintf(&b, "LINKS: %d\n", len(recs))
		for _, rec := range recs {
			fmt.Fprintf(&b, "  - %s\n", rec.TargetURL)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFile writes the link report to path, replacing any previous
// report.
func (t *Tracker) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create links file: %w", err)
	}
	defer f.Close()

	if err := t.Write(f); err != nil {
		return fmt.Errorf("write links file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close links file: %w", err)
	}
	t.logger.Info("wrote link report", "path", path, "sources", len(t.order), "links", t.total)
	return nil
}

// TopTargets returns the most frequently linked target URLs across
// all sources, capped at limit.
func (t *Tracker) TopTargets(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]int)
	for _, recs := range t.bySrc {
		for _, rec := range recs {
			counts[rec.TargetURL]++
		}
	}
	targets := make([]string, 0, len(counts))
	for target := range counts {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool {
		if counts[targets[i]] != counts[targets[j]] {
			return counts[targets[i]] > counts[targets[j]]
		}
		return targets[i] < targets[j]
	})
	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}
	return targets
}
