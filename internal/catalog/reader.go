package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/LavishGent/productcache/internal/cache"
	"github.com/LavishGent/productcache/internal/types"
)

// Reader serves product reads.
type Reader struct {
	deps Deps
}

// NewReader returns a Reader over deps. Cache and Store are required.
func NewReader(deps Deps) *Reader {
	d := deps.withDefaults()
	d.Logger = d.Logger.With("component", "catalog-reader")
	return &Reader{deps: d}
}

// Get returns the product with the given id.
//
// The returned error matches types.ErrNotFound when the row is absent and
// types.ErrServiceUnavailable when neither the replica nor the primary could
// be reached.
func (r *Reader) Get(ctx context.Context, id int64) (types.Product, error) {
	start := time.Now()
	product, err := r.get(ctx, id)
	r.deps.Metrics.RecordOutcome(OpGet, types.OutcomeOf(err), time.Since(start))
	return product, err
}

func (r *Reader) get(ctx context.Context, id int64) (types.Product, error) {
	key := cache.ProductKey(id)

	var cached types.Product
	if r.deps.Cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	product, err := r.fetch(ctx, types.TargetReplica, id)
	if types.IsConnectivity(err) {
		r.deps.Logger.Warn("Replica unreachable, falling back to primary", "id", id, "error", err)
		r.deps.Metrics.RecordFallback(types.TargetReplica, types.TargetPrimary)

		product, err = r.fetch(ctx, types.TargetPrimary, id)
		if types.IsConnectivity(err) {
			r.deps.Logger.Error("Primary unreachable after replica failure", "id", id, "error", err)
			return types.Product{}, types.NewUnavailableError(OpGet, err)
		}
	}
	if err != nil {
		return types.Product{}, err
	}
	if product == nil {
		return types.Product{}, fmt.Errorf("product %d: %w", id, types.ErrNotFound)
	}

	r.deps.Cache.Set(ctx, key, product, r.deps.TTL)
	return *product, nil
}

func (r *Reader) fetch(ctx context.Context, target types.Target, id int64) (*types.Product, error) {
	start := time.Now()
	product, err := r.deps.Store.FetchByID(ctx, target, id)
	r.deps.Metrics.RecordStoreCall(target, "fetch", time.Since(start), err)
	return product, err
}
