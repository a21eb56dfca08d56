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

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/harvester/core"
	"github.com/poiesic/harvester/links"
	"github.com/poiesic/harvester/loader"
	"github.com/poiesic/harvester/process"
	"github.com/poiesic/harvester/upload"
)

// Fetcher retrieves raw documents for a URL. A non-empty forced
// strategy bypasses strategy selection entirely.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, forced loader.Strategy) loader.Result
}

// PageProcessor turns raw documents into chunks and extracted links.
type PageProcessor interface {
	Process(ctx context.Context, sourceURL string, docs []core.RawDocument, loaderType string) (*process.PageResult, error)
}

// ChunkUploader embeds chunks and writes them to the document store.
type ChunkUploader interface {
	UploadChunks(ctx context.Context, chunks []core.DocumentChunk) (upload.Result, error)
	UploadLinks(ctx context.Context, links []core.LinkRecord) (upload.Result, error)
}

var (
	_ Fetcher       = (*loader.Loader)(nil)
	_ PageProcessor = (*process.Processor)(nil)
	_ ChunkUploader = (*upload.Uploader)(nil)
)

const defaultDomainInterval = 2 * time.Second

// Report summarizes a completed run.
type Report struct {
	Successful []string
	Failed     []Failure
	Stats      core.StatsSnapshot
}

// Orchestrator drives ingestion runs over URL lists.
type Orchestrator struct {
	fetcher   Fetcher
	processor PageProcessor
	uploader  ChunkUploader
	tracker   *links.Tracker

	mode      Mode
	chunkPath string
	linksPath string
	failed    *failedLog
	pool      *ants.Pool
	limiter   *domainLimiter
	stats     *core.IngestionStats
	logger    *slog.Logger

	mu         sync.Mutex
	chunkFile  *os.File
	successful []string
	failures   []Failure
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for concurrent URL processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithMode selects streaming or batch output. Default is ModeStream.
func WithMode(mode Mode) Option {
	return func(o *Orchestrator) error {
		o.mode = mode
		return nil
	}
}

// WithChunkFile sets the serialized chunk file path used in batch mode.
func WithChunkFile(path string) Option {
	return func(o *Orchestrator) error {
		o.chunkPath = path
		return nil
	}
}

// WithLinksFile sets the path of the link report written at finalize.
func WithLinksFile(path string) Option {
	return func(o *Orchestrator) error {
		o.linksPath = path
		return nil
	}
}

// WithFailedLog sets the failed-URL log path.
func WithFailedLog(path string) Option {
	return func(o *Orchestrator) error {
		o.failed = newFailedLog(path)
		return nil
	}
}

// WithDomainInterval sets the minimum spacing between requests to the
// same domain. Zero disables throttling.
func WithDomainInterval(interval time.Duration) Option {
	return func(o *Orchestrator) error {
		o.limiter = newDomainLimiter(interval, 1)
		return nil
	}
}

// WithTracker supplies a shared link tracker.
func WithTracker(tracker *links.Tracker) Option {
	return func(o *Orchestrator) error {
		o.tracker = tracker
		return nil
	}
}

// New creates an Orchestrator. The uploader may be nil for batch runs
// that only produce the chunk file.
func New(fetcher Fetcher, processor PageProcessor, uploader ChunkUploader, opts ...Option) (*Orchestrator, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if processor == nil {
		return nil, ErrProcessorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		fetcher:   fetcher,
		processor: processor,
		uploader:  uploader,
		tracker:   links.NewTracker(),
		mode:      ModeStream,
		failed:    newFailedLog(""),
		pool:      pool,
		limiter:   newDomainLimiter(defaultDomainInterval, 1),
		stats:     &core.IngestionStats{},
		logger:    slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	if o.mode == ModeStream && o.uploader == nil {
		o.Release()
		return nil, ErrUploaderRequired
	}
	if o.mode == ModeBatch && o.chunkPath == "" {
		o.Release()
		return nil, ErrChunkFileRequired
	}
	return o, nil
}

// Stats exposes the live run counters.
func (o *Orchestrator) Stats() *core.IngestionStats {
	return o.stats
}

// Run ingests every URL in the list, re-attempts the failures with the
// JS-rendering strategy, and finalizes. Per-URL failures never abort
// the run; only configuration-level failures (chunk file unwritable,
// finalize upload impossible) return an error.
func (o *Orchestrator) Run(ctx context.Context, urls []string) (*Report, error) {
	o.logger = o.logger.With("run_id", uuid.NewString())
	o.stats.TotalURLs.Add(int64(len(urls)))

	if o.mode == ModeBatch {
		file, err := os.OpenFile(o.chunkPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open chunk file: %w", err)
		}
		o.chunkFile = file
	}

	o.logger.Info("starting run", "urls", len(urls), "mode", o.mode)
	o.runPass(ctx, urls, "")

	// Second pass: everything that failed, forced through JS
	// rendering. Policy skips stay skipped.
	retry := o.retryCandidates()
	if len(retry) > 0 && ctx.Err() == nil {
		o.logger.Info("starting retry pass", "urls", len(retry))
		o.clearFailures(retry)
		o.runPass(ctx, retry, loader.StrategyJSRender)
	}

	if err := o.finalize(ctx); err != nil {
		return nil, err
	}

	o.mu.Lock()
	report := &Report{
		Successful: append([]string(nil), o.successful...),
		Failed:     append([]Failure(nil), o.failures...),
		Stats:      o.stats.Snapshot(),
	}
	o.mu.Unlock()

	o.logger.Info("run complete",
		"successful", len(report.Successful), "failed", len(report.Failed))
	return report, nil
}

func (o *Orchestrator) runPass(ctx context.Context, urls []string, forced loader.Strategy) {
	var wg sync.WaitGroup
	for _, url := range urls {
		url := url
		wg.Add(1)
		submitErr := o.pool.Submit(func() {
			defer wg.Done()
			o.runURL(ctx, url, forced)
		})
		if submitErr != nil {
			wg.Done()
			o.fail(url, fmt.Sprintf("worker pool: %v", submitErr))
		}
	}
	wg.Wait()
}

// retryCandidates returns the failed-log URLs worth a second pass.
// Skip-matched URLs are excluded so policy skips never cause a fetch.
func (o *Orchestrator) retryCandidates() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	var retry []string
	for _, failure := range o.failures {
		if failure.Reason == loader.ReasonSkipped {
			continue
		}
		retry = append(retry, failure.URL)
	}
	return retry
}

// clearFailures removes the given URLs from the failure list before
// they are re-attempted.
func (o *Orchestrator) clearFailures(urls []string) {
	retrying := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		retrying[url] = struct{}{}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.failures[:0]
	for _, failure := range o.failures {
		if _, ok := retrying[failure.URL]; ok {
			o.stats.Failed.Add(-1)
			continue
		}
		kept = append(kept, failure)
	}
	o.failures = kept
}

// runURL drives one URL through the state machine.
func (o *Orchestrator) runURL(ctx context.Context, url string, forced loader.Strategy) {
	log := o.logger.With("url", url)
	state := StatePending

	if err := o.limiter.Wait(ctx, url); err != nil {
		o.fail(url, "cancelled before fetch")
		return
	}

	result := o.fetcher.Fetch(ctx, url, forced)
	if result.Reason == loader.ReasonSkipped {
		log.Info("skipped by policy")
		o.fail(url, loader.ReasonSkipped)
		return
	}
	if !result.OK {
		o.fail(url, result.Reason)
		return
	}
	state = StateLoaded

	page, err := o.processor.Process(ctx, url, result.Documents, string(result.Strategy))
	if err != nil {
		o.fail(url, fmt.Sprintf("processing: %v", err))
		return
	}

	// Zero usable chunks from a non-JS strategy gets one forced
	// JS-rendering attempt before the URL is declared failed.
	if len(page.Chunks) == 0 && forced == "" && result.Strategy != loader.StrategyJSRender {
		log.Warn("no chunks, forcing JS render", "strategy", result.Strategy)
		result = o.fetcher.Fetch(ctx, url, loader.StrategyJSRender)
		if result.OK {
			page, err = o.processor.Process(ctx, url, result.Documents, string(result.Strategy))
			if err != nil {
				o.fail(url, fmt.Sprintf("processing after JS fallback: %v", err))
				return
			}
		}
	}
	if len(page.Chunks) == 0 {
		o.fail(url, "no usable chunks")
		return
	}
	state = StateProcessed

	if added := o.tracker.Add(page.Links); added > 0 {
		o.stats.TotalLinks.Add(int64(added))
	}

	if o.mode == ModeStream {
		// In-flight uploads finish even when the run is cancelled,
		// so no chunk reaches the store without its embedding.
		res, upErr := o.uploader.UploadChunks(context.WithoutCancel(ctx), page.Chunks)
		o.stats.TotalUploads.Add(int64(res.Uploaded))
		o.stats.FailedUploads.Add(int64(res.Failed))
		if upErr != nil {
			o.fail(url, fmt.Sprintf("upload: %v", upErr))
			return
		}
		if res.Uploaded == 0 && len(page.Chunks) > 0 {
			o.fail(url, "upload: no records stored")
			return
		}
		state = StateUploaded
	} else {
		if err := o.appendBlock(page); err != nil {
			o.fail(url, fmt.Sprintf("chunk file: %v", err))
			return
		}
	}

	o.stats.Successful.Add(1)
	o.stats.TotalChunks.Add(int64(len(page.Chunks)))

	o.mu.Lock()
	o.successful = append(o.successful, url)
	o.mu.Unlock()

	state = StateDone
	log.Info("ingested", "state", state, "loader", page.LoaderType,
		"chunks", len(page.Chunks), "links", len(page.Links))
}

func (o *Orchestrator) appendBlock(page *process.PageResult) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return process.WriteBlock(o.chunkFile, process.BlockFromResult(page))
}

func (o *Orchestrator) fail(url, reason string) {
	o.stats.Failed.Add(1)
	o.logger.Warn("url failed", "url", url, "reason", reason)

	o.mu.Lock()
	o.failures = append(o.failures, Failure{URL: url, Reason: reason})
	o.mu.Unlock()

	if err := o.failed.Append(url); err != nil {
		o.logger.Error("cannot write failed log", "err", err)
	}
}

// finalize flushes links and, in batch mode, uploads the chunk file.
func (o *Orchestrator) finalize(ctx context.Context) error {
	if o.chunkFile != nil {
		if err := o.chunkFile.Close(); err != nil {
			return fmt.Errorf("close chunk file: %w", err)
		}
		o.chunkFile = nil
	}

	if o.linksPath != "" && o.tracker.TotalLinks() > 0 {
		if err := o.tracker.WriteFile(o.linksPath); err != nil {
			return err
		}
	}

	if o.uploader == nil {
		return nil
	}
	uploadCtx := context.WithoutCancel(ctx)

	if all := o.tracker.All(); len(all) > 0 {
		res, err := o.uploader.UploadLinks(uploadCtx, all)
		o.stats.TotalUploads.Add(int64(res.Uploaded))
		o.stats.FailedUploads.Add(int64(res.Failed))
		if err != nil {
			return fmt.Errorf("upload links: %w", err)
		}
	}

	if o.mode == ModeBatch {
		if err := o.uploadChunkFile(uploadCtx); err != nil {
			return err
		}
	}
	return nil
}

// uploadChunkFile re-reads the serialized chunk file and uploads its
// records grouped by source URL.
func (o *Orchestrator) uploadChunkFile(ctx context.Context) error {
	file, err := os.Open(o.chunkPath)
	if err != nil {
		return fmt.Errorf("reopen chunk file: %w", err)
	}
	defer file.Close()

	blocks, err := process.ParseBlocks(file)
	if err != nil {
		return fmt.Errorf("parse chunk file: %w", err)
	}

	for _, block := range blocks {
		res, err := o.uploader.UploadChunks(ctx, block.Chunks)
		o.stats.TotalUploads.Add(int64(res.Uploaded))
		o.stats.FailedUploads.Add(int64(res.Failed))
		if err != nil {
			return fmt.Errorf("upload chunks for %s: %w", block.SourceURL, err)
		}
	}
	o.logger.Info("uploaded chunk file", "blocks", len(blocks))
	return nil
}

// Release frees the worker pool. The orchestrator should not be used
// after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}
