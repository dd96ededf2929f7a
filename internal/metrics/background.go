package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LavishGent/productcache/internal/types"
)

// BackgroundPublisher ships metrics snapshots to a Publisher at a fixed
// interval until its context is cancelled or Stop is called.
type BackgroundPublisher struct {
	publisher   types.Publisher
	logger      *slog.Logger
	getSnapshot func() *types.MetricsSnapshot
	cancel      context.CancelFunc
	ctx         context.Context
	wg          sync.WaitGroup
	interval    time.Duration
}

// NewBackgroundPublisher creates a new background publisher.
// snapshotFn is called on each tick; a nil snapshot is skipped.
func NewBackgroundPublisher(
	publisher types.Publisher,
	interval time.Duration,
	snapshotFn func() *types.MetricsSnapshot,
	logger *slog.Logger,
) *BackgroundPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &BackgroundPublisher{
		publisher:   publisher,
		interval:    interval,
		logger:      logger.With("component", "metrics-background"),
		getSnapshot: snapshotFn,
	}
}

// ForTracker publishes the snapshots of a Tracker.
func ForTracker(tracker *Tracker, publisher types.Publisher, interval time.Duration, logger *slog.Logger) *BackgroundPublisher {
	return NewBackgroundPublisher(publisher, interval, func() *types.MetricsSnapshot {
		s := tracker.Snapshot()
		return &s
	}, logger)
}

// Start begins the background publishing loop.
func (b *BackgroundPublisher) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.wg.Add(1)
	go b.run()
	b.logger.Info("Background metrics publisher started", "interval", b.interval)
}

// Stop cancels the background context and waits for the final publish.
func (b *BackgroundPublisher) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	b.logger.Info("Background metrics publisher stopped")
}

func (b *BackgroundPublisher) run() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			b.publish()
			return
		case <-ticker.C:
			b.publish()
		}
	}
}

func (b *BackgroundPublisher) publish() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in metrics publisher", "panic", r)
		}
	}()

	if b.getSnapshot == nil {
		return
	}

	if snapshot := b.getSnapshot(); snapshot != nil {
		b.publisher.PublishSnapshot(snapshot)
	}
}

// PublishNow triggers an immediate metrics publish.
func (b *BackgroundPublisher) PublishNow() {
	b.publish()
}
