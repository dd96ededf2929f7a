package metrics

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LavishGent/productcache/internal/types"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	if tracker == nil {
		t.Fatal("NewTracker() returned nil")
	}

	snapshot := tracker.Snapshot()
	if snapshot.Requests != 0 {
		t.Errorf("initial Requests = %d, want 0", snapshot.Requests)
	}
}

func TestTrackerCacheCounters(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordCacheHit("product:1", time.Millisecond)
	tracker.RecordCacheHit("product:2", time.Millisecond)
	tracker.RecordCacheMiss("product:3", time.Millisecond)
	tracker.RecordCacheError("set", errors.New("connection refused"))

	snapshot := tracker.Snapshot()
	if snapshot.CacheHits != 2 {
		t.Errorf("CacheHits = %d, want 2", snapshot.CacheHits)
	}
	if snapshot.CacheMisses != 1 {
		t.Errorf("CacheMisses = %d, want 1", snapshot.CacheMisses)
	}
	if snapshot.CacheErrors != 1 {
		t.Errorf("CacheErrors = %d, want 1", snapshot.CacheErrors)
	}
	if ratio := snapshot.CacheHitRatio(); ratio < 0.66 || ratio > 0.67 {
		t.Errorf("CacheHitRatio() = %f, want ~0.667", ratio)
	}
}

func TestTrackerRecordStoreCall(t *testing.T) {
	connErr := types.NewConnectivityError(types.TargetReplica, "fetch", types.KindDial, errors.New("refused"))
	storeErr := &types.StoreError{Target: types.TargetPrimary, Op: "insert", Err: errors.New("constraint")}

	tests := []struct {
		name         string
		target       types.Target
		err          error
		wantPrimary  int64
		wantReplica  int64
		wantFailures int64
	}{
		{"primary success", types.TargetPrimary, nil, 1, 0, 0},
		{"replica success", types.TargetReplica, nil, 0, 1, 0},
		{"replica connectivity failure", types.TargetReplica, connErr, 0, 1, 1},
		{"primary store error is not a failure", types.TargetPrimary, storeErr, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker()
			tracker.RecordStoreCall(tt.target, "fetch", time.Millisecond, tt.err)

			s := tracker.Snapshot()
			if s.PrimaryCalls != tt.wantPrimary {
				t.Errorf("PrimaryCalls = %d, want %d", s.PrimaryCalls, tt.wantPrimary)
			}
			if s.ReplicaCalls != tt.wantReplica {
				t.Errorf("ReplicaCalls = %d, want %d", s.ReplicaCalls, tt.wantReplica)
			}
			if s.StoreFailures != tt.wantFailures {
				t.Errorf("StoreFailures = %d, want %d", s.StoreFailures, tt.wantFailures)
			}
		})
	}
}

func TestTrackerRecordFallback(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordStoreCall(types.TargetReplica, "fetch", time.Millisecond, nil)
	tracker.RecordStoreCall(types.TargetReplica, "fetch", time.Millisecond, nil)
	tracker.RecordFallback(types.TargetReplica, types.TargetPrimary)

	s := tracker.Snapshot()
	if s.Fallbacks != 1 {
		t.Errorf("Fallbacks = %d, want 1", s.Fallbacks)
	}
	if s.FallbackRatio() != 0.5 {
		t.Errorf("FallbackRatio() = %f, want 0.5", s.FallbackRatio())
	}
}

func TestTrackerRecordOutcome(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordOutcome("get", types.OutcomeSuccess, 10*time.Millisecond)
	tracker.RecordOutcome("get", types.OutcomeNotFound, 10*time.Millisecond)
	tracker.RecordOutcome("update", types.OutcomeBadRequest, 10*time.Millisecond)
	tracker.RecordOutcome("get", types.OutcomeServiceUnavailable, 10*time.Millisecond)
	tracker.RecordOutcome("create", types.OutcomeError, 10*time.Millisecond)

	s := tracker.Snapshot()
	if s.Requests != 5 {
		t.Errorf("Requests = %d, want 5", s.Requests)
	}
	if s.NotFound != 1 || s.BadRequest != 1 || s.Unavailable != 1 || s.Errors != 1 {
		t.Errorf("outcome counters = %d/%d/%d/%d, want 1/1/1/1",
			s.NotFound, s.BadRequest, s.Unavailable, s.Errors)
	}
	if s.AvgLatencyMs != 10 {
		t.Errorf("AvgLatencyMs = %f, want 10", s.AvgLatencyMs)
	}
	if s.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestTrackerRecordCircuitBreakerStateChange(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordCircuitBreakerStateChange("closed", "open")
	tracker.RecordCircuitBreakerStateChange("open", "half-open")

	if got := tracker.Snapshot().CircuitBreakerChanges; got != 2 {
		t.Errorf("CircuitBreakerChanges = %d, want 2", got)
	}
}

func TestTrackerLatencyPercentiles(t *testing.T) {
	tracker := NewTracker()

	for i := 1; i <= 10; i++ {
		tracker.RecordOutcome("get", types.OutcomeSuccess, time.Duration(i*10)*time.Millisecond)
	}

	snapshot := tracker.Snapshot()

	if snapshot.AvgLatencyMs < 50 || snapshot.AvgLatencyMs > 60 {
		t.Errorf("AvgLatencyMs = %f, want ~55", snapshot.AvgLatencyMs)
	}
	if snapshot.P50LatencyMs < 40 || snapshot.P50LatencyMs > 60 {
		t.Errorf("P50LatencyMs = %f, want ~50", snapshot.P50LatencyMs)
	}
	if snapshot.P95LatencyMs < 80 || snapshot.P95LatencyMs > 110 {
		t.Errorf("P95LatencyMs = %f, want ~90-100", snapshot.P95LatencyMs)
	}
}

func TestTrackerSubMillisecondLatency(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordOutcome("get", types.OutcomeSuccess, 500*time.Microsecond)

	if got := tracker.Snapshot().AvgLatencyMs; got != 0.5 {
		t.Errorf("AvgLatencyMs = %f, want 0.5", got)
	}
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordCacheHit("product:1", time.Millisecond)
	tracker.RecordStoreCall(types.TargetPrimary, "fetch", time.Millisecond, nil)
	tracker.RecordFallback(types.TargetReplica, types.TargetPrimary)
	tracker.RecordOutcome("get", types.OutcomeError, 10*time.Millisecond)

	tracker.Reset()

	s := tracker.Snapshot()
	if s.CacheHits != 0 || s.PrimaryCalls != 0 || s.Fallbacks != 0 || s.Requests != 0 || s.Errors != 0 {
		t.Errorf("counters not cleared: %+v", s)
	}
	if s.AvgLatencyMs != 0 {
		t.Errorf("after reset AvgLatencyMs = %f, want 0", s.AvgLatencyMs)
	}
}

func TestTrackerLatencyCircularBuffer(t *testing.T) {
	tracker := newTrackerWithBuffer(4)

	for i := 1; i <= 6; i++ {
		tracker.RecordOutcome("get", types.OutcomeSuccess, time.Duration(i)*time.Millisecond)
	}

	tracker.latencyMu.RLock()
	count := tracker.latencyCount
	tracker.latencyMu.RUnlock()

	if count != 4 {
		t.Errorf("latencies count = %d, want 4", count)
	}

	// Oldest samples (1ms, 2ms) were overwritten: 3+4+5+6 / 4
	if got := tracker.Snapshot().AvgLatencyMs; got != 4.5 {
		t.Errorf("AvgLatencyMs = %f, want 4.5", got)
	}
}

func TestTrackerConcurrency(t *testing.T) {
	tracker := NewTracker()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			tracker.RecordCacheHit("product:1", time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			tracker.RecordStoreCall(types.TargetReplica, "fetch", time.Millisecond, nil)
		}()
		go func() {
			defer wg.Done()
			tracker.RecordOutcome("get", types.OutcomeSuccess, time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			tracker.Snapshot()
		}()
	}

	wg.Wait()

	s := tracker.Snapshot()
	if s.CacheHits != 100 {
		t.Errorf("CacheHits = %d, want 100", s.CacheHits)
	}
	if s.ReplicaCalls != 100 {
		t.Errorf("ReplicaCalls = %d, want 100", s.ReplicaCalls)
	}
	if s.Requests != 100 {
		t.Errorf("Requests = %d, want 100", s.Requests)
	}
}

func TestLoggingPublisher(t *testing.T) {
	t.Run("creates with default logger", func(t *testing.T) {
		if NewLoggingPublisher(nil) == nil {
			t.Fatal("NewLoggingPublisher(nil) returned nil")
		}
	})

	t.Run("publishes snapshot", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		publisher := NewLoggingPublisher(logger)

		publisher.PublishSnapshot(&types.MetricsSnapshot{Requests: 42, CacheHits: 3, CacheMisses: 1})

		output := buf.String()
		if !strings.Contains(output, "catalog_metrics") || !strings.Contains(output, "requests=42") {
			t.Errorf("unexpected log output: %s", output)
		}
	})

	t.Run("nil snapshot is ignored", func(t *testing.T) {
		var buf bytes.Buffer
		publisher := NewLoggingPublisher(slog.New(slog.NewTextHandler(&buf, nil)))
		publisher.PublishSnapshot(nil)
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %s", buf.String())
		}
	})

	t.Run("debug metrics", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		publisher := NewLoggingPublisher(logger, "service:productcache")

		publisher.Gauge("test.metric", 42.5, "tag1:value1")
		publisher.Incr("test.counter", OperationTag("get"))
		publisher.Count("test.count", 3)
		publisher.Histogram("test.hist", 1.5)
		publisher.Timing("test.latency", 100*time.Millisecond, TargetTag("replica"))

		output := buf.String()
		for _, want := range []string{"gauge", "incr", "count", "histogram", "timing", "service:productcache"} {
			if !strings.Contains(output, want) {
				t.Errorf("log output missing %q", want)
			}
		}
	})

	t.Run("event", func(t *testing.T) {
		var buf bytes.Buffer
		publisher := NewLoggingPublisher(slog.New(slog.NewTextHandler(&buf, nil)))

		publisher.Event("Circuit opened", "cache circuit opened", "warning", "source:test")

		if buf.Len() == 0 {
			t.Error("expected log output for event")
		}
	})

	t.Run("close returns nil", func(t *testing.T) {
		if err := NewLoggingPublisher(nil).Close(); err != nil {
			t.Errorf("Close() error = %v, want nil", err)
		}
	})
}

func TestBackgroundPublisher(t *testing.T) {
	t.Run("start and stop", func(t *testing.T) {
		publisher := &trackingPublisher{}
		bg := NewBackgroundPublisher(publisher, 10*time.Millisecond, func() *types.MetricsSnapshot {
			return &types.MetricsSnapshot{Requests: 1}
		}, nil)

		bg.Start(context.Background())
		time.Sleep(50 * time.Millisecond)
		bg.Stop()

		if publisher.publishCount.Load() < 1 {
			t.Error("expected at least one publish before stop")
		}
	})

	t.Run("publishes on stop", func(t *testing.T) {
		publisher := &trackingPublisher{}
		bg := NewBackgroundPublisher(publisher, time.Hour, func() *types.MetricsSnapshot {
			return &types.MetricsSnapshot{}
		}, nil)

		bg.Start(context.Background())
		before := publisher.publishCount.Load()
		bg.Stop()

		if publisher.publishCount.Load() <= before {
			t.Error("expected publish on stop")
		}
	})

	t.Run("publish now", func(t *testing.T) {
		publisher := &trackingPublisher{}
		bg := NewBackgroundPublisher(publisher, time.Hour, func() *types.MetricsSnapshot {
			return &types.MetricsSnapshot{}
		}, nil)

		bg.Start(context.Background())
		bg.PublishNow()
		bg.Stop()

		if publisher.publishCount.Load() < 2 {
			t.Error("expected at least 2 publishes (PublishNow + Stop)")
		}
	})

	t.Run("nil snapshot is skipped", func(t *testing.T) {
		publisher := &trackingPublisher{}
		bg := NewBackgroundPublisher(publisher, time.Hour, func() *types.MetricsSnapshot { return nil }, nil)
		bg.PublishNow()

		if publisher.publishCount.Load() != 0 {
			t.Error("nil snapshot should not be published")
		}
	})

	t.Run("recovers from panic", func(t *testing.T) {
		bg := NewBackgroundPublisher(&trackingPublisher{}, time.Hour, func() *types.MetricsSnapshot {
			panic("boom")
		}, nil)
		bg.PublishNow()
	})

	t.Run("for tracker", func(t *testing.T) {
		tracker := NewTracker()
		tracker.RecordOutcome("get", types.OutcomeSuccess, time.Millisecond)

		publisher := &trackingPublisher{}
		bg := ForTracker(tracker, publisher, time.Hour, nil)
		bg.PublishNow()

		if got := publisher.lastRequests.Load(); got != 1 {
			t.Errorf("published Requests = %d, want 1", got)
		}
	})
}

func TestNoOps(t *testing.T) {
	recorder := NewNoOpRecorder()
	recorder.RecordCacheHit("k", time.Millisecond)
	recorder.RecordCacheMiss("k", time.Millisecond)
	recorder.RecordCacheError("get", errors.New("error"))
	recorder.RecordStoreCall(types.TargetPrimary, "fetch", time.Millisecond, nil)
	recorder.RecordFallback(types.TargetReplica, types.TargetPrimary)
	recorder.RecordOutcome("get", types.OutcomeSuccess, time.Millisecond)
	recorder.RecordCircuitBreakerStateChange("closed", "open")

	publisher := NewNoOpPublisher()
	publisher.Gauge("test", 1.0, "tag:value")
	publisher.Incr("test", "tag:value")
	publisher.Count("test", 10, "tag:value")
	publisher.Histogram("test", 1.5, "tag:value")
	publisher.Timing("test", time.Second, "tag:value")
	publisher.Event("title", "text", "info", "tag:value")
	publisher.PublishSnapshot(&types.MetricsSnapshot{})

	if err := publisher.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestAvgDuration(t *testing.T) {
	tests := []struct {
		name      string
		durations []time.Duration
		expected  time.Duration
	}{
		{"empty", []time.Duration{}, 0},
		{"single", []time.Duration{10 * time.Millisecond}, 10 * time.Millisecond},
		{"multiple", []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}, 20 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := avgDuration(tt.durations); result != tt.expected {
				t.Errorf("avgDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestPercentile(t *testing.T) {
	ten := make([]time.Duration, 0, 10)
	for i := 1; i <= 10; i++ {
		ten = append(ten, time.Duration(i)*time.Millisecond)
	}

	tests := []struct {
		name      string
		durations []time.Duration
		p         int
		expected  time.Duration
	}{
		{"empty", []time.Duration{}, 50, 0},
		{"single_p50", []time.Duration{10 * time.Millisecond}, 50, 10 * time.Millisecond},
		{"ten_values_p50", ten, 50, 5 * time.Millisecond},
		{"ten_values_p90", ten, 90, 9 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := percentile(tt.durations, tt.p); result != tt.expected {
				t.Errorf("percentile(%d) = %v, want %v", tt.p, result, tt.expected)
			}
		})
	}
}

func TestTagHelpers(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{"Tag", func() string { return Tag("key", "value") }, "key:value"},
		{"OperationTag", func() string { return OperationTag("get") }, "operation:get"},
		{"OutcomeTag", func() string { return OutcomeTag("not_found") }, "outcome:not_found"},
		{"TargetTag", func() string { return TargetTag("replica") }, "target:replica"},
		{"LayerTag", func() string { return LayerTag("redis") }, "layer:redis"},
		{"CircuitStateTag", func() string { return CircuitStateTag("open") }, "circuit_state:open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.fn(); result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

func TestMergeTagsDoesNotAlias(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "env:test"

	first := mergeTags(base, []string{"a:1"})
	second := mergeTags(base, []string{"b:2"})

	if first[1] != "a:1" {
		t.Errorf("first merge clobbered: %v", first)
	}
	if second[1] != "b:2" {
		t.Errorf("second merge = %v", second)
	}
}

func TestTimer(t *testing.T) {
	publisher := &trackingPublisher{}

	timer := NewTimer(publisher, "http.request", OperationTag("get"))
	time.Sleep(10 * time.Millisecond)

	if elapsed := timer.Elapsed(); elapsed < 10*time.Millisecond {
		t.Errorf("Elapsed() = %v, want >= 10ms", elapsed)
	}
	if duration := timer.Stop(); duration < 10*time.Millisecond {
		t.Errorf("Stop() = %v, want >= 10ms", duration)
	}
	if publisher.timingCount.Load() != 1 {
		t.Errorf("timingCount = %d, want 1", publisher.timingCount.Load())
	}
}

func TestTimerStopWith(t *testing.T) {
	publisher := &trackingPublisher{}

	timer := NewTimer(publisher, "http.request", Tag("method", "GET"))
	timer.StopWith(Tag("status", "200"))

	if got := publisher.lastTags(); len(got) != 2 || got[0] != "method:GET" || got[1] != "status:200" {
		t.Errorf("tags = %v, want [method:GET status:200]", got)
	}
}

type trackingPublisher struct {
	mu           sync.Mutex
	tags         []string

	publishCount atomic.Int64
	timingCount  atomic.Int64
	lastRequests atomic.Int64
}

func (p *trackingPublisher) Gauge(name string, value float64, tags ...string)     {}
func (p *trackingPublisher) Incr(name string, tags ...string)                     {}
func (p *trackingPublisher) Count(name string, value int64, tags ...string)       {}
func (p *trackingPublisher) Histogram(name string, value float64, tags ...string) {}
func (p *trackingPublisher) Timing(name string, duration time.Duration, tags ...string) {
	p.timingCount.Add(1)
	p.mu.Lock()
	p.tags = tags
	p.mu.Unlock()
}

func (p *trackingPublisher) lastTags() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tags
}
func (p *trackingPublisher) Event(title, text, alertType string, tags ...string) {}
func (p *trackingPublisher) PublishSnapshot(s *types.MetricsSnapshot) {
	p.publishCount.Add(1)
	p.lastRequests.Store(s.Requests)
}
func (p *trackingPublisher) Close() error { return nil }

var _ types.Publisher = (*trackingPublisher)(nil)
