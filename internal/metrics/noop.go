package metrics

import (
	"time"

	"github.com/LavishGent/productcache/internal/types"
)

// NoOpRecorder discards every measurement.
type NoOpRecorder struct{}

func NewNoOpRecorder() *NoOpRecorder {
	return &NoOpRecorder{}
}

func (NoOpRecorder) RecordCacheHit(key string, latency time.Duration)  {}
func (NoOpRecorder) RecordCacheMiss(key string, latency time.Duration) {}
func (NoOpRecorder) RecordCacheError(operation string, err error)      {}
func (NoOpRecorder) RecordStoreCall(target types.Target, operation string, latency time.Duration, err error) {
}
func (NoOpRecorder) RecordFallback(from, to types.Target)                                    {}
func (NoOpRecorder) RecordOutcome(operation string, outcome types.Outcome, d time.Duration) {}
func (NoOpRecorder) RecordCircuitBreakerStateChange(from, to string)                        {}

// NoOpPublisher is a no-operation metrics publisher for testing or when disabled.
type NoOpPublisher struct{}

func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (p *NoOpPublisher) Gauge(name string, value float64, tags ...string)             {}
func (p *NoOpPublisher) Incr(name string, tags ...string)                             {}
func (p *NoOpPublisher) Count(name string, value int64, tags ...string)               {}
func (p *NoOpPublisher) Histogram(name string, value float64, tags ...string)         {}
func (p *NoOpPublisher) Timing(name string, duration time.Duration, tags ...string)   {}
func (p *NoOpPublisher) Event(title, text, alertType string, tags ...string)          {}
func (p *NoOpPublisher) PublishSnapshot(snapshot *types.MetricsSnapshot)              {}
func (p *NoOpPublisher) Close() error                                                 { return nil }

var (
	_ types.MetricsRecorder = NoOpRecorder{}
	_ types.Publisher       = (*NoOpPublisher)(nil)
)
