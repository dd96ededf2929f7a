package cache

import (
	"context"
	"time"

	"github.com/LavishGent/productcache/internal/types"
)

// DisabledCache is a no-op cache layer: every lookup misses and writes are discarded.
type DisabledCache struct{}

// NewDisabledCache creates a new disabled cache.
func NewDisabledCache() *DisabledCache {
	return &DisabledCache{}
}

// Name returns the cache layer name.
func (c *DisabledCache) Name() string { return "disabled" }

// IsAvailable returns false as this cache is disabled.
func (c *DisabledCache) IsAvailable() bool { return false }

// Close does nothing as this cache is disabled.
func (c *DisabledCache) Close() error { return nil }

// Ping succeeds; a disabled cache is never a degraded dependency.
func (c *DisabledCache) Ping(ctx context.Context) error { return nil }

// Get returns ErrCacheMiss as this cache is disabled.
func (c *DisabledCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, types.ErrCacheMiss
}

// Set does nothing as this cache is disabled.
func (c *DisabledCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing as this cache is disabled.
func (c *DisabledCache) Delete(ctx context.Context, key string) error {
	return nil
}

var _ types.CacheLayer = (*DisabledCache)(nil)
