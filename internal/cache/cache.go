package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"repo-browser/internal/model"
)

const (
	// Key is the single slot the listing is stored under.
	Key = "org_repositories"
	// TTL is how long an entry stays fresh.
	TTL = 5 * time.Minute
)

// Entry is the cached listing together with the moment it was written.
type Entry struct {
	Data      []model.Repository `json:"data"`
	HasMore   bool               `json:"hasMore"`
	Timestamp int64              `json:"timestamp"` // epoch milliseconds
}

// Cache is a time-boxed single-slot cache over a Store.
// Store faults are logged and reported as misses; nothing is returned to callers.
type Cache struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache writing to store.
func New(store Store, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		now:    time.Now,
		logger: logger.With("cache_key", Key),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached entry if one exists, parses, and is no older than TTL.
// Malformed and expired entries are evicted.
func (c *Cache) Get(ctx context.Context) (Entry, bool) {
	raw, err := c.store.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Debug("Cache read failed", "error", err)
		}
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Data == nil {
		c.logger.Debug("Evicting malformed cache entry", "error", err)
		c.evict(ctx)
		return Entry{}, false
	}

	if c.now().UnixMilli()-e.Timestamp > TTL.Milliseconds() {
		c.logger.Debug("Evicting expired cache entry", "timestamp", e.Timestamp)
		c.evict(ctx)
		return Entry{}, false
	}
	return e, true
}

// Put overwrites the slot with data stamped with the current time.
func (c *Cache) Put(ctx context.Context, data []model.Repository, hasMore bool) {
	if data == nil {
		data = []model.Repository{}
	}
	raw, err := json.Marshal(Entry{
		Data:      data,
		HasMore:   hasMore,
		Timestamp: c.now().UnixMilli(),
	})
	if err != nil {
		c.logger.Debug("Cache encode failed", "error", err)
		return
	}
	if err := c.store.Put(ctx, Key, raw); err != nil {
		c.logger.Debug("Cache write failed", "error", err)
	}
}

func (c *Cache) evict(ctx context.Context) {
	if err := c.store.Evict(ctx, Key); err != nil {
		c.logger.Debug("Cache evict failed", "error", err)
	}
}
