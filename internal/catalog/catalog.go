// Package catalog orchestrates product reads and writes over a best-effort
// cache and a primary/replica relational store.
//
// Reads are cache-aside: a cache hit never touches the store, a miss reads
// the replica and falls back to the primary exactly once on a connectivity
// failure. Writes go to the primary only; Create prefills the cache and
// Update invalidates it after the commit is acknowledged.
package catalog

import (
	"log/slog"
	"time"

	"github.com/LavishGent/productcache/internal/metrics"
	"github.com/LavishGent/productcache/internal/types"
)

// DefaultTTL is the cache entry lifetime used when Deps.TTL is unset.
const DefaultTTL = 60 * time.Second

// Operation names used for logging and metrics.
const (
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
)

// Deps holds the collaborators shared by Reader and Writer.
// Metrics and Logger are optional.
type Deps struct {
	Cache   types.ProductCache
	Store   types.ProductStore
	Metrics types.MetricsRecorder
	Logger  *slog.Logger
	TTL     time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Metrics == nil {
		d.Metrics = metrics.NewNoOpRecorder()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.TTL <= 0 {
		d.TTL = DefaultTTL
	}
	return d
}
