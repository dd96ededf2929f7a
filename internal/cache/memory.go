package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/LavishGent/productcache/internal/config"
	"github.com/LavishGent/productcache/internal/types"
)

// MemoryCache implements an in-process cache layer using BigCache.
// Entries share one lifetime, the configured cache TTL; the per-call TTL is ignored.
type MemoryCache struct {
	cache     *bigcache.BigCache
	maxSizeMB int
	logger    *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64

	closed atomic.Bool
}

// NewMemoryCache creates a new memory cache with the given configuration.
func NewMemoryCache(cfg config.CacheConfig, logger *slog.Logger) (*MemoryCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mc := &MemoryCache{
		maxSizeMB: cfg.MemoryMaxSizeMB,
		logger:    logger.With("component", "memory-cache"),
	}

	cleanWindow := cfg.TTL / 2
	if cleanWindow < time.Second {
		cleanWindow = time.Second
	}

	bcConfig := bigcache.Config{
		Shards:             cfg.MemoryShards,
		LifeWindow:         cfg.TTL,
		CleanWindow:        cleanWindow,
		MaxEntriesInWindow: 1000 * 10 * 60,
		MaxEntrySize:       512,
		HardMaxCacheSize:   cfg.MemoryMaxSizeMB,
		Verbose:            false,
		Logger:             &bigcacheLogger{logger: mc.logger},
		OnRemoveWithReason: func(key string, entry []byte, reason bigcache.RemoveReason) {
			if reason == bigcache.NoSpace || reason == bigcache.Expired {
				mc.evictions.Add(1)
			}
		},
	}

	bc, err := bigcache.New(context.Background(), bcConfig)
	if err != nil {
		return nil, err
	}

	mc.cache = bc
	return mc, nil
}

// Name returns the cache layer name.
func (c *MemoryCache) Name() string {
	return "memory"
}

// IsAvailable returns true if the cache is not closed.
func (c *MemoryCache) IsAvailable() bool {
	return !c.closed.Load()
}

// Get retrieves a value from the memory cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, types.ErrClosed
	}

	data, err := c.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			c.misses.Add(1)
			return nil, types.ErrCacheMiss
		}
		return nil, types.NewCacheError("Get", key, "memory", err)
	}

	c.hits.Add(1)
	return data, nil
}

// Set stores a value in the memory cache.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	if err := c.cache.Set(key, value); err != nil {
		return types.NewCacheError("Set", key, "memory", err)
	}

	c.sets.Add(1)
	return nil
}

// Delete removes a value from the memory cache. Deleting an absent key succeeds.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	if err := c.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return types.NewCacheError("Delete", key, "memory", err)
	}

	c.deletes.Add(1)
	return nil
}

// Ping fails only once the cache has been closed.
func (c *MemoryCache) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return types.ErrClosed
	}
	return nil
}

// Close closes the memory cache and releases resources.
func (c *MemoryCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.cache.Close()
}

// Stats returns memory cache statistics.
func (c *MemoryCache) Stats() LayerStats {
	return LayerStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Deletes:   c.deletes.Load(),
		Evictions: c.evictions.Load(),
	}
}

// EntryCount returns the number of entries in the memory cache.
func (c *MemoryCache) EntryCount() int {
	return c.cache.Len()
}

// MaxSize returns the maximum size of the memory cache in bytes.
func (c *MemoryCache) MaxSize() int64 {
	return int64(c.maxSizeMB) * 1024 * 1024
}

type bigcacheLogger struct {
	logger *slog.Logger
}

func (l *bigcacheLogger) Printf(format string, args ...any) {
	l.logger.Debug("bigcache: "+format, args...)
}

var _ types.CacheLayer = (*MemoryCache)(nil)
