package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/harvester/ai"
	"github.com/poiesic/harvester/storage"
)

// Default similarity threshold for vector matches.
const defaultThreshold = 0.60

// verbatimBoost is added when every query keyword appears in a match.
const verbatimBoost = 0.3

// Result is one scored search hit.
type Result struct {
	Match storage.SearchMatch
	Score float32
}

// Searcher provides semantic search over the document store.
type Searcher struct {
	store     storage.DocumentStore
	embedder  ai.Embedder
	threshold float32
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithThreshold overrides the minimum similarity for a match.
func WithThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		s.threshold = threshold
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.DocumentStore, provider ai.EmbeddingProvider, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	s := &Searcher{
		store:     store,
		embedder:  provider.Embedder(),
		threshold: defaultThreshold,
		logger:    slog.Default().With("component", "searcher"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FindSimilar returns up to maxHits stored chunks relevant to the
// query, ranked by similarity with a verbatim keyword boost.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]Result, error) {
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.store.MatchDocuments(ctx, embedding, s.threshold, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}

	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		score := match.Similarity
		if containsAllQueryWords(match.Content, query) {
			score += verbatimBoost
		}
		results = append(results, Result{Match: match, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	return results, nil
}
