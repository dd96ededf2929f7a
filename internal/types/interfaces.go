package types

import (
	"context"
	"time"
)

type CacheInfo interface {
	Name() string
	IsAvailable() bool
}

type CacheReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

type CacheWriter interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type CacheCloser interface {
	Close() error
}

// CacheLayer is a key-value cache backend. Unlike ProductCache it reports errors.
type CacheLayer interface {
	CacheInfo
	CacheReader
	CacheWriter
	CacheCloser
	Ping(ctx context.Context) error
}

// ProductCache is the best-effort cache contract used by the catalog.
// None of its operations report failures: a failed Get is a miss,
// a failed Set or Delete is dropped.
type ProductCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// ProductStore is the relational store contract used by the catalog.
// An absent row is reported as a nil product with a nil error.
type ProductStore interface {
	FetchByID(ctx context.Context, target Target, id int64) (*Product, error)
	Insert(ctx context.Context, in NewProduct) (Product, error)
	Update(ctx context.Context, id int64, patch ProductPatch) (*Product, error)
}

type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

type MetricsRecorder interface {
	RecordCacheHit(key string, latency time.Duration)
	RecordCacheMiss(key string, latency time.Duration)
	RecordCacheError(operation string, err error)
	RecordStoreCall(target Target, operation string, latency time.Duration, err error)
	RecordFallback(from, to Target)
	RecordOutcome(operation string, outcome Outcome, latency time.Duration)
	RecordCircuitBreakerStateChange(from, to string)
}

// Publisher ships metrics to an external sink.
type Publisher interface {
	Gauge(name string, value float64, tags ...string)
	Incr(name string, tags ...string)
	Count(name string, value int64, tags ...string)
	Histogram(name string, value float64, tags ...string)
	Timing(name string, duration time.Duration, tags ...string)
	Event(title, text string, alertType string, tags ...string)
	PublishSnapshot(snapshot *MetricsSnapshot)
	Close() error
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
