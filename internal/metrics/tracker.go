// Package metrics provides catalog metrics collection and publishing.
package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LavishGent/productcache/internal/types"
)

const (
	defaultLatencyBufferSize = 10000
)

// Tracker implements types.MetricsRecorder with lock-free counters and a
// bounded ring buffer of request latencies.
type Tracker struct {
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	cacheErrors atomic.Int64

	primaryCalls  atomic.Int64
	replicaCalls  atomic.Int64
	storeFailures atomic.Int64
	fallbacks     atomic.Int64

	requests    atomic.Int64
	notFound    atomic.Int64
	badRequest  atomic.Int64
	unavailable atomic.Int64
	errors      atomic.Int64

	latencyMu     sync.RWMutex
	latencyBuffer []time.Duration
	latencyIndex  int
	latencyCount  int

	cbStateChanges atomic.Int64
}

func NewTracker() *Tracker {
	return newTrackerWithBuffer(defaultLatencyBufferSize)
}

func newTrackerWithBuffer(size int) *Tracker {
	if size <= 0 {
		size = defaultLatencyBufferSize
	}
	return &Tracker{
		latencyBuffer: make([]time.Duration, size),
	}
}

func (t *Tracker) RecordCacheHit(key string, latency time.Duration) {
	t.cacheHits.Add(1)
}

func (t *Tracker) RecordCacheMiss(key string, latency time.Duration) {
	t.cacheMisses.Add(1)
}

func (t *Tracker) RecordCacheError(operation string, err error) {
	t.cacheErrors.Add(1)
}

// RecordStoreCall counts one store round-trip. Only connectivity failures
// count as store failures; a constraint violation is a successful call.
func (t *Tracker) RecordStoreCall(target types.Target, operation string, latency time.Duration, err error) {
	switch target {
	case types.TargetPrimary:
		t.primaryCalls.Add(1)
	case types.TargetReplica:
		t.replicaCalls.Add(1)
	}
	if types.IsConnectivity(err) {
		t.storeFailures.Add(1)
	}
}

func (t *Tracker) RecordFallback(from, to types.Target) {
	t.fallbacks.Add(1)
}

// RecordOutcome records the terminal state and end-to-end latency of one
// catalog operation.
func (t *Tracker) RecordOutcome(operation string, outcome types.Outcome, latency time.Duration) {
	t.requests.Add(1)
	switch outcome {
	case types.OutcomeNotFound:
		t.notFound.Add(1)
	case types.OutcomeBadRequest:
		t.badRequest.Add(1)
	case types.OutcomeServiceUnavailable:
		t.unavailable.Add(1)
	case types.OutcomeError:
		t.errors.Add(1)
	}
	t.recordLatency(latency)
}

func (t *Tracker) RecordCircuitBreakerStateChange(from, to string) {
	t.cbStateChanges.Add(1)
}

// recordLatency adds a latency measurement to the circular buffer.
func (t *Tracker) recordLatency(latency time.Duration) {
	t.latencyMu.Lock()
	t.latencyBuffer[t.latencyIndex] = latency
	t.latencyIndex = (t.latencyIndex + 1) % len(t.latencyBuffer)
	if t.latencyCount < len(t.latencyBuffer) {
		t.latencyCount++
	}
	t.latencyMu.Unlock()
}

// Snapshot returns current metrics snapshot.
func (t *Tracker) Snapshot() types.MetricsSnapshot {
	t.latencyMu.RLock()
	count := t.latencyCount
	latencyCopy := make([]time.Duration, count)
	if count > 0 {
		if count < len(t.latencyBuffer) {
			copy(latencyCopy, t.latencyBuffer[:count])
		} else {
			// Buffer is full: oldest sample starts at latencyIndex
			firstPart := len(t.latencyBuffer) - t.latencyIndex
			copy(latencyCopy[:firstPart], t.latencyBuffer[t.latencyIndex:])
			copy(latencyCopy[firstPart:], t.latencyBuffer[:t.latencyIndex])
		}
	}
	t.latencyMu.RUnlock()

	snapshot := types.MetricsSnapshot{
		Timestamp:             time.Now(),
		CacheHits:             t.cacheHits.Load(),
		CacheMisses:           t.cacheMisses.Load(),
		CacheErrors:           t.cacheErrors.Load(),
		PrimaryCalls:          t.primaryCalls.Load(),
		ReplicaCalls:          t.replicaCalls.Load(),
		StoreFailures:         t.storeFailures.Load(),
		Fallbacks:             t.fallbacks.Load(),
		Requests:              t.requests.Load(),
		NotFound:              t.notFound.Load(),
		BadRequest:            t.badRequest.Load(),
		Unavailable:           t.unavailable.Load(),
		Errors:                t.errors.Load(),
		CircuitBreakerChanges: t.cbStateChanges.Load(),
	}

	if len(latencyCopy) > 0 {
		snapshot.AvgLatencyMs = toMillis(avgDuration(latencyCopy))
		snapshot.P50LatencyMs = toMillis(percentile(latencyCopy, 50))
		snapshot.P95LatencyMs = toMillis(percentile(latencyCopy, 95))
		snapshot.P99LatencyMs = toMillis(percentile(latencyCopy, 99))
	}

	return snapshot
}

// Reset clears all metrics.
func (t *Tracker) Reset() {
	for _, c := range []*atomic.Int64{
		&t.cacheHits, &t.cacheMisses, &t.cacheErrors,
		&t.primaryCalls, &t.replicaCalls, &t.storeFailures, &t.fallbacks,
		&t.requests, &t.notFound, &t.badRequest, &t.unavailable, &t.errors,
		&t.cbStateChanges,
	} {
		c.Store(0)
	}

	t.latencyMu.Lock()
	t.latencyIndex = 0
	t.latencyCount = 0
	t.latencyMu.Unlock()
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func avgDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

func percentile(durations []time.Duration, p int) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	slices.Sort(sorted)

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}

var _ types.MetricsRecorder = (*Tracker)(nil)
