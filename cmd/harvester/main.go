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


package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/harvester"
	"github.com/poiesic/harvester/ai"
	"github.com/poiesic/harvester/cleaner"
	"github.com/poiesic/harvester/ingest"
	"github.com/poiesic/harvester/loader"
	"github.com/poiesic/harvester/loader/cache"
	"github.com/poiesic/harvester/process"
	"github.com/poiesic/harvester/reembed"
	"github.com/poiesic/harvester/search"
	"github.com/poiesic/harvester/sites"
)

func main() {
	// Optional .env for DATABASE_URL / OPENAI_API_KEY; absence is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "harvester",
		Usage: "Web document ingestion pipeline with embedded search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Fetch, chunk, and upload a list of URLs",
				Action: ingestCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "urls",
						Aliases:  []string{"u"},
						Usage:    "Path to a newline-delimited URL list",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Output mode: stream (upload as processed) or batch (append to chunk file)",
						Value: string(ingest.ModeStream),
					},
					&cli.StringFlag{
						Name:  "chunk-file",
						Usage: "Chunk output file for batch mode",
						Value: "scraped_chunks.txt",
					},
					&cli.StringFlag{
						Name:  "links-file",
						Usage: "Extracted links report file",
						Value: "extracted_links.txt",
					},
					&cli.StringFlag{
						Name:  "failed-log",
						Usage: "Append-only failed URL log",
						Value: "failed_urls.txt",
					},
					&cli.StringFlag{
						Name:  "recursive-sites",
						Usage: "Recursive crawl prefix list",
						Value: "recursive_sites.txt",
					},
					&cli.StringFlag{
						Name:  "jsrender-sites",
						Usage: "JS-rendering domain pattern list",
						Value: "playwright_sites.txt",
					},
					&cli.StringFlag{
						Name:  "skip-sites",
						Usage: "Skip pattern list",
						Value: "skip_sites.txt",
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "Fetched-page cache directory (empty disables caching)",
					},
					&cli.DurationFlag{
						Name:  "cache-ttl",
						Usage: "Fetched-page cache entry lifetime",
						Value: 24 * time.Hour,
					},
					&cli.StringFlag{
						Name:  "user-agent",
						Usage: "User-Agent header for fetches",
					},
					&cli.DurationFlag{
						Name:  "domain-interval",
						Usage: "Minimum interval between fetches against one domain",
						Value: 2 * time.Second,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size (0 uses the CPU count)",
					},
				}, backendFlags(false)...),
			},
			{
				Name:   "upload-file",
				Usage:  "Parse a chunk file from a batch run and upload its records",
				Action: uploadFileCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Chunk file written by a batch ingest run",
						Required: true,
					},
				}, backendFlags(true)...),
			},
			{
				Name:      "search",
				Usage:     "Similarity search over ingested chunks",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score",
						Value: 0.60,
					},
				}, backendFlags(true)...),
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for every stored chunk",
				Action: reembedCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "normalize",
						Usage: "Re-normalize vectors to unit length before writing",
					},
				}, backendFlags(true)...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// backendFlags are shared by every command that talks to the store and
// the embedding backends. The DSN is optional for ingest, where batch
// mode can run without a database.
func backendFlags(dsnRequired bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "dsn",
			Usage:    "PostgreSQL connection string",
			EnvVars:  []string{"DATABASE_URL"},
			Required: dsnRequired,
		},
		&cli.StringFlag{
			Name:  "remote-host",
			Usage: "Remote embedding service host URL",
			Value: "https://api.openai.com/v1",
		},
		&cli.StringFlag{
			Name:  "remote-model",
			Usage: "Remote embedding model name",
			Value: "text-embedding-3-small",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the remote embedding service",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "local-host",
			Usage: "Local OpenAI-compatible embedding host URL",
			Value: "http://localhost:11434/v1",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithRemoteHost(c.String("remote-host")),
		ai.WithRemoteModel(c.String("remote-model")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithLocalHost(c.String("local-host")),
	)
}

func ingestCommand(c *cli.Context) error {
	// SIGINT stops issuing new fetches; in-flight uploads still finish.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	urls, err := readURLList(c.String("urls"))
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %s", c.String("urls"))
	}

	siteCfg, err := sites.Load(sites.Paths{
		Recursive: c.String("recursive-sites"),
		JSRender:  c.String("jsrender-sites"),
		Skip:      c.String("skip-sites"),
	})
	if err != nil {
		return fmt.Errorf("failed to load site configuration: %w", err)
	}

	mode := ingest.Mode(c.String("mode"))
	if mode != ingest.ModeStream && mode != ingest.ModeBatch {
		return fmt.Errorf("invalid mode %q: must be stream or batch", c.String("mode"))
	}

	cl := cleaner.New()

	loaderOpts := []loader.Option{}
	if ua := c.String("user-agent"); ua != "" {
		loaderOpts = append(loaderOpts, loader.WithUserAgent(ua))
	}
	if dir := c.String("cache-dir"); dir != "" {
		pageCache, err := cache.Open(dir, c.Duration("cache-ttl"))
		if err != nil {
			return fmt.Errorf("failed to open page cache: %w", err)
		}
		defer pageCache.Close()
		loaderOpts = append(loaderOpts, loader.WithCache(pageCache))
	}
	ld := loader.New(siteCfg, cl, loaderOpts...)

	proc := process.New(cl)

	// Batch mode runs without a database when no DSN is given; the
	// chunk file is uploaded later via upload-file.
	var uploader ingest.ChunkUploader
	if dsn := c.String("dsn"); dsn != "" {
		hv, err := harvester.Open(ctx, dsn, harvester.WithAIConfig(aiConfigFromFlags(c)))
		if err != nil {
			return fmt.Errorf("failed to open backends: %w", err)
		}
		defer hv.Close()
		uploader = hv.NewUploader()
	} else if mode == ingest.ModeStream {
		return fmt.Errorf("stream mode requires a database: set --dsn or DATABASE_URL")
	}

	orchOpts := []ingest.Option{
		ingest.WithMode(mode),
		ingest.WithChunkFile(c.String("chunk-file")),
		ingest.WithLinksFile(c.String("links-file")),
		ingest.WithFailedLog(c.String("failed-log")),
		ingest.WithDomainInterval(c.Duration("domain-interval")),
	}
	if size := c.Int("pool-size"); size > 0 {
		orchOpts = append(orchOpts, ingest.WithPoolSize(size))
	}

	orch, err := ingest.New(ld, proc, uploader, orchOpts...)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orch.Release()

	fmt.Fprintf(os.Stderr, "URLs: %d\n", len(urls))
	fmt.Fprintf(os.Stderr, "Mode: %s\n", mode)
	fmt.Fprintln(os.Stderr)

	report, err := orch.Run(ctx, urls)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printReport(report)
	return nil
}

func uploadFileCommand(c *cli.Context) error {
	ctx := context.Background()

	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open chunk file: %w", err)
	}
	blocks, err := process.ParseBlocks(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("failed to parse chunk file: %w", err)
	}
	if len(blocks) == 0 {
		return fmt.Errorf("no blocks found in %s", c.String("file"))
	}

	hv, err := harvester.Open(ctx, c.String("dsn"), harvester.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open backends: %w", err)
	}
	defer hv.Close()

	uploader := hv.NewUploader()

	var uploaded, failed int
	for _, block := range blocks {
		res, err := uploader.UploadChunks(ctx, block.Chunks)
		if err != nil {
			return fmt.Errorf("upload failed for %s: %w", block.SourceURL, err)
		}
		uploaded += res.Uploaded
		failed += res.Failed
		fmt.Fprintf(os.Stderr, "%s: %d uploaded, %d failed\n",
			block.SourceURL, res.Uploaded, res.Failed)
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d uploaded, %d failed across %d sources\n",
		uploaded, failed, len(blocks))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	hv, err := harvester.Open(ctx, c.String("dsn"), harvester.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open backends: %w", err)
	}
	defer hv.Close()

	searcher, err := hv.NewSearcher(search.WithThreshold(float32(c.Float64("threshold"))))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(ctx, query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: %q (%s#%d)[%0.3f]\n",
			i, snippet(hit.Match.Content, 120), hit.Match.SourceURL,
			hit.Match.ChunkIndex, hit.Score)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Normalize:      c.Bool("normalize"),
	}

	// Validate config
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	hv, err := harvester.Open(ctx, c.String("dsn"), harvester.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open backends: %w", err)
	}
	defer hv.Close()

	reembedder := hv.NewReembedder(config, os.Stderr)

	fmt.Fprintf(os.Stderr, "Provider: %s (%d dimensions)\n",
		hv.Provider().Name(), hv.Provider().Dimension())
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func printReport(report *ingest.Report) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Successful: %d\n", len(report.Successful))
	fmt.Fprintf(os.Stderr, "Failed: %d\n", len(report.Failed))
	fmt.Fprintf(os.Stderr, "Chunks: %d  Links: %d  Uploads: %d (%d failed)\n",
		report.Stats.TotalChunks, report.Stats.TotalLinks,
		report.Stats.TotalUploads, report.Stats.FailedUploads)

	if len(report.Failed) > 0 {
		fmt.Fprintln(os.Stderr, "\nFailed URLs:")
		for _, f := range report.Failed {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", f.URL, snippet(f.Reason, 80))
		}
	}
}

// readURLList reads a newline-delimited URL file, skipping blank lines
// and #-comments.
func readURLList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
