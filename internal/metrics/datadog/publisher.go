// Package datadog provides a DataDog StatsD metrics publisher.
package datadog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/LavishGent/productcache/internal/config"
	"github.com/LavishGent/productcache/internal/types"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// Publisher implements types.Publisher on top of a dogstatsd client.
//
//nolint:govet // Small struct - minimal alignment benefit
type Publisher struct {
	baseTags []string
	client   *statsd.Client
	logger   *slog.Logger
	config   *config.DataDogConfig
}

// NewPublisher creates a new DataDog publisher from config.
// If DataDog is not enabled, returns a NoOpPublisher instead.
func NewPublisher(cfg *config.DataDogConfig, logger *slog.Logger) (types.Publisher, error) {
	if !cfg.Enabled {
		return &NoOpPublisher{}, nil
	}

	if logger == nil {
		logger = slog.Default()
	}

	addr := fmt.Sprintf("%s:%d", cfg.AgentHost, cfg.Port)

	client, err := statsd.New(addr,
		statsd.WithNamespace(cfg.Prefix+"."),
		statsd.WithTags(cfg.Tags),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client: %w", err)
	}

	logger.Info("DataDog publisher initialized",
		"address", addr,
		"prefix", cfg.Prefix,
		"tags", cfg.Tags,
	)

	return &Publisher{
		client:   client,
		config:   cfg,
		baseTags: cfg.Tags,
		logger:   logger.With("component", "datadog"),
	}, nil
}

// Gauge records a gauge metric (value at a point in time).
func (p *Publisher) Gauge(name string, value float64, tags ...string) {
	allTags := p.mergeTags(tags)
	if err := p.client.Gauge(name, value, allTags, 1); err != nil {
		p.logger.Debug("Failed to send gauge metric", "name", name, "error", err)
	}
}

// Incr increments a counter by 1.
func (p *Publisher) Incr(name string, tags ...string) {
	allTags := p.mergeTags(tags)
	if err := p.client.Incr(name, allTags, 1); err != nil {
		p.logger.Debug("Failed to send incr metric", "name", name, "error", err)
	}
}

// Count increments a counter by a specified amount.
func (p *Publisher) Count(name string, value int64, tags ...string) {
	allTags := p.mergeTags(tags)
	if err := p.client.Count(name, value, allTags, 1); err != nil {
		p.logger.Debug("Failed to send count metric", "name", name, "error", err)
	}
}

// Histogram records a distribution of values.
func (p *Publisher) Histogram(name string, value float64, tags ...string) {
	allTags := p.mergeTags(tags)
	if err := p.client.Histogram(name, value, allTags, 1); err != nil {
		p.logger.Debug("Failed to send histogram metric", "name", name, "error", err)
	}
}

// Timing records a timing metric.
func (p *Publisher) Timing(name string, duration time.Duration, tags ...string) {
	allTags := p.mergeTags(tags)
	if err := p.client.Timing(name, duration, allTags, 1); err != nil {
		p.logger.Debug("Failed to send timing metric", "name", name, "error", err)
	}
}

// Event sends a DataDog event.
func (p *Publisher) Event(title, text, alertType string, tags ...string) {
	allTags := p.mergeTags(tags)
	event := &statsd.Event{
		Title:     title,
		Text:      text,
		AlertType: statsd.EventAlertType(alertType),
		Tags:      allTags,
	}
	if err := p.client.Event(event); err != nil {
		p.logger.Debug("Failed to send event", "title", title, "error", err)
	}
}

// PublishSnapshot publishes a tracker snapshot as gauges. Counters in the
// snapshot are cumulative, so they are sent as gauges rather than counts.
func (p *Publisher) PublishSnapshot(s *types.MetricsSnapshot) {
	if s == nil {
		return
	}

	p.Gauge("requests.total", float64(s.Requests))
	p.Gauge("requests.not_found", float64(s.NotFound))
	p.Gauge("requests.bad_request", float64(s.BadRequest))
	p.Gauge("requests.unavailable", float64(s.Unavailable))
	p.Gauge("requests.errors", float64(s.Errors))

	p.Gauge("cache.hits", float64(s.CacheHits))
	p.Gauge("cache.misses", float64(s.CacheMisses))
	p.Gauge("cache.errors", float64(s.CacheErrors))
	p.Gauge("cache.hit_ratio", clamp(s.CacheHitRatio(), 0, 1))

	p.Gauge("store.calls", float64(s.PrimaryCalls), "target:primary")
	p.Gauge("store.calls", float64(s.ReplicaCalls), "target:replica")
	p.Gauge("store.failures", float64(s.StoreFailures))
	p.Gauge("store.fallbacks", float64(s.Fallbacks))
	p.Gauge("store.fallback_ratio", clamp(s.FallbackRatio(), 0, 1))

	p.Gauge("latency.avg_ms", maxFloat(0, s.AvgLatencyMs))
	p.Gauge("latency.p50_ms", maxFloat(0, s.P50LatencyMs))
	p.Gauge("latency.p95_ms", maxFloat(0, s.P95LatencyMs))
	p.Gauge("latency.p99_ms", maxFloat(0, s.P99LatencyMs))
}

// Close releases resources held by the publisher.
func (p *Publisher) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func (p *Publisher) mergeTags(tags []string) []string {
	if len(tags) == 0 {
		return p.baseTags
	}
	if len(p.baseTags) == 0 {
		return tags
	}
	out := make([]string, 0, len(p.baseTags)+len(tags))
	out = append(out, p.baseTags...)
	return append(out, tags...)
}

func clamp(val, minVal, maxVal float64) float64 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

var _ types.Publisher = (*Publisher)(nil)
