// Package cache provides a TTL cache of fetched page bodies backed by
// BadgerDB, so repeated runs within the TTL window skip the network fetch.
package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const defaultTTL = 24 * time.Hour

// Page is one cached fetch.
type Page struct {
	URL       string
	Body      string
	FetchedAt time.Time
}

// Cache is a badger-backed page cache. Entries expire via badger's native
// TTL support; an expired entry simply reads as a miss.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens (creating if needed) a page cache at the given directory.
// A non-positive ttl falls back to the 24h default.
func Open(dir string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	logger := slog.Default().With("component", "pagecache")
	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return &Cache{db: db, ttl: ttl, logger: logger}, nil
}

// Get returns the cached page for a URL, or false on a miss (including
// expired and corrupt entries).
func (c *Cache) Get(url string) (*Page, bool) {
	var page *Page
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(url))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			p, err := unmarshalPage(val)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn("cache read failed", "url", url, "err", err)
		}
		return nil, false
	}
	return page, true
}

// Put stores a page with the cache's TTL.
func (c *Cache) Put(page *Page) error {
	if page == nil || page.URL == "" {
		return nil
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(page.URL), marshalPage(page)).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
