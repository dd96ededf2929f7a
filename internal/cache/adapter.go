package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavishGent/productcache/internal/resilience"
	"github.com/LavishGent/productcache/internal/types"
)

// DefaultOperationTimeout bounds every cache call when no timeout is configured.
const DefaultOperationTimeout = 300 * time.Millisecond

// AdapterOptions holds the collaborators of an Adapter. Nil fields get defaults.
type AdapterOptions struct {
	Timeout    time.Duration
	Serializer types.Serializer
	Metrics    types.MetricsRecorder
	Breaker    resilience.Breaker
	Logger     *slog.Logger
}

// Adapter turns a CacheLayer into the best-effort ProductCache contract.
// No failure of the layer is ever returned to the caller.
type Adapter struct {
	layer      types.CacheLayer
	serializer types.Serializer
	metrics    types.MetricsRecorder
	breaker    resilience.Breaker
	logger     *slog.Logger
	timeout    time.Duration
}

// NewAdapter wraps layer. The breaker, when set, gates Get and Set only;
// Delete always reaches the layer.
func NewAdapter(layer types.CacheLayer, opts AdapterOptions) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		layer:      layer,
		serializer: opts.Serializer,
		metrics:    opts.Metrics,
		breaker:    opts.Breaker,
		logger:     logger.With("component", "cache", "layer", layer.Name()),
		timeout:    opts.Timeout,
	}
	if a.serializer == nil {
		a.serializer = NewJSONSerializer()
	}
	if a.breaker == nil {
		a.breaker = resilience.NewDisabledCircuitBreaker()
	}
	if a.timeout <= 0 {
		a.timeout = DefaultOperationTimeout
	}

	a.breaker.SetOnStateChange(func(from, to resilience.State) {
		a.logger.Info("Circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
		if a.metrics != nil {
			a.metrics.RecordCircuitBreakerStateChange(from.String(), to.String())
		}
	})

	return a
}

// Get decodes the entry at key into dest. It reports false on a miss
// and on any failure, including a timeout or an undecodable payload.
func (a *Adapter) Get(ctx context.Context, key string, dest any) bool {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var data []byte
	var hit bool
	err := a.breaker.Execute(func() error {
		var err error
		data, err = a.layer.Get(ctx, key)
		if types.IsCacheMiss(err) {
			return nil
		}
		hit = err == nil
		return err
	})
	latency := time.Since(start)

	if err != nil {
		a.fail("get", key, err)
		return false
	}
	if !hit {
		if a.metrics != nil {
			a.metrics.RecordCacheMiss(key, latency)
		}
		return false
	}

	if err := a.serializer.Unmarshal(data, dest); err != nil {
		a.fail("decode", key, err)
		return false
	}

	if a.metrics != nil {
		a.metrics.RecordCacheHit(key, latency)
	}
	return true
}

// Set stores value at key with the given ttl. Failures are dropped.
func (a *Adapter) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := a.serializer.Marshal(value)
	if err != nil {
		a.fail("encode", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	err = a.breaker.Execute(func() error {
		return a.layer.Set(ctx, key, data, ttl)
	})
	if err != nil {
		a.fail("set", key, err)
	}
}

// Delete removes the entry at key. It runs even if the caller's context
// is already cancelled, since it follows a committed write. Failures are dropped.
func (a *Adapter) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	if err := a.layer.Delete(ctx, key); err != nil {
		a.fail("delete", key, err)
	}
}

// Ping probes the layer for health reporting.
func (a *Adapter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.layer.Ping(ctx)
}

// Name returns the name of the wrapped layer.
func (a *Adapter) Name() string {
	return a.layer.Name()
}

// Close closes the wrapped layer.
func (a *Adapter) Close() error {
	return a.layer.Close()
}

func (a *Adapter) fail(op, key string, err error) {
	if resilience.IsCircuitOpen(err) {
		a.logger.Debug("Cache call skipped, circuit open", "op", op, "key", key)
		return
	}
	a.logger.Debug("Cache operation failed", "op", op, "key", key, "error", err)
	if a.metrics != nil {
		a.metrics.RecordCacheError(op, err)
	}
}

var _ types.ProductCache = (*Adapter)(nil)
