package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/LavishGent/productcache/internal/cache"
	"github.com/LavishGent/productcache/internal/types"
)

// Writer serves product mutations. Every write goes to the primary.
type Writer struct {
	deps Deps
}

// NewWriter returns a Writer over deps. Cache and Store are required.
func NewWriter(deps Deps) *Writer {
	d := deps.withDefaults()
	d.Logger = d.Logger.With("component", "catalog-writer")
	return &Writer{deps: d}
}

// Create inserts a product and prefills its cache entry.
func (w *Writer) Create(ctx context.Context, in types.NewProduct) (types.Product, error) {
	start := time.Now()
	product, err := w.create(ctx, in)
	w.deps.Metrics.RecordOutcome(OpCreate, types.OutcomeOf(err), time.Since(start))
	return product, err
}

func (w *Writer) create(ctx context.Context, in types.NewProduct) (types.Product, error) {
	callStart := time.Now()
	product, err := w.deps.Store.Insert(ctx, in)
	w.deps.Metrics.RecordStoreCall(types.TargetPrimary, "insert", time.Since(callStart), err)
	if err != nil {
		return types.Product{}, w.lift(OpCreate, err)
	}

	w.deps.Cache.Set(ctx, cache.ProductKey(product.ID), &product, w.deps.TTL)
	return product, nil
}

// Update applies patch to the product with the given id and invalidates its
// cache entry. An empty patch fails with types.ErrBadRequest before the store
// is touched.
func (w *Writer) Update(ctx context.Context, id int64, patch types.ProductPatch) (types.Product, error) {
	start := time.Now()
	product, err := w.update(ctx, id, patch)
	w.deps.Metrics.RecordOutcome(OpUpdate, types.OutcomeOf(err), time.Since(start))
	return product, err
}

func (w *Writer) update(ctx context.Context, id int64, patch types.ProductPatch) (types.Product, error) {
	if patch.IsEmpty() {
		return types.Product{}, types.ErrBadRequest
	}

	callStart := time.Now()
	product, err := w.deps.Store.Update(ctx, id, patch)
	w.deps.Metrics.RecordStoreCall(types.TargetPrimary, "update", time.Since(callStart), err)
	if err != nil {
		return types.Product{}, w.lift(OpUpdate, err)
	}
	if product == nil {
		return types.Product{}, fmt.Errorf("product %d: %w", id, types.ErrNotFound)
	}

	// Delete rather than refresh: the next read repopulates from the store.
	w.deps.Cache.Delete(ctx, cache.ProductKey(id))
	return *product, nil
}

// lift turns a primary connectivity failure into ServiceUnavailable.
// There is no fallback target for writes.
func (w *Writer) lift(op string, err error) error {
	if types.IsConnectivity(err) {
		w.deps.Logger.Error("Primary unreachable", "operation", op, "error", err)
		return types.NewUnavailableError(op, err)
	}
	w.deps.Logger.Error("Store write failed", "operation", op, "error", err)
	return err
}
