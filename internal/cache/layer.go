// Package cache provides the cache layers and the best-effort adapter the catalog reads through.
package cache

import (
	"fmt"
	"log/slog"

	"github.com/LavishGent/productcache/internal/config"
	"github.com/LavishGent/productcache/internal/types"
)

// LayerStats contains operation counters of a cache layer.
type LayerStats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
}

// NewLayer builds the cache layer selected by cfg.Backend.
// An unreachable Redis server is not an error: the layer starts degraded.
func NewLayer(cfg config.CacheConfig, logger *slog.Logger) (types.CacheLayer, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		return NewRedisCache(cfg, logger)
	case config.BackendMemory:
		mc, err := NewMemoryCache(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		return mc, nil
	case config.BackendDisabled, "":
		return NewDisabledCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
