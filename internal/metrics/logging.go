package metrics

import (
	"log/slog"
	"time"

	"github.com/LavishGent/productcache/internal/types"
)

// LoggingPublisher logs metrics using slog.
type LoggingPublisher struct {
	logger   *slog.Logger
	baseTags []string
}

func NewLoggingPublisher(logger *slog.Logger, baseTags ...string) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{
		logger:   logger.With("component", "metrics"),
		baseTags: baseTags,
	}
}

func (p *LoggingPublisher) Gauge(name string, value float64, tags ...string) {
	p.logger.Debug("gauge", "name", name, "value", value, "tags", p.mergeTags(tags))
}

func (p *LoggingPublisher) Incr(name string, tags ...string) {
	p.logger.Debug("incr", "name", name, "tags", p.mergeTags(tags))
}

func (p *LoggingPublisher) Count(name string, value int64, tags ...string) {
	p.logger.Debug("count", "name", name, "value", value, "tags", p.mergeTags(tags))
}

func (p *LoggingPublisher) Histogram(name string, value float64, tags ...string) {
	p.logger.Debug("histogram", "name", name, "value", value, "tags", p.mergeTags(tags))
}

func (p *LoggingPublisher) Timing(name string, duration time.Duration, tags ...string) {
	p.logger.Debug("timing",
		"name", name,
		"duration_ms", duration.Milliseconds(),
		"tags", p.mergeTags(tags),
	)
}

func (p *LoggingPublisher) Event(title, text, alertType string, tags ...string) {
	p.logger.Info("event",
		"title", title,
		"text", text,
		"alert_type", alertType,
		"tags", p.mergeTags(tags),
	)
}

// PublishSnapshot logs a snapshot as a single structured record.
func (p *LoggingPublisher) PublishSnapshot(s *types.MetricsSnapshot) {
	if s == nil {
		return
	}

	p.logger.Info("catalog_metrics",
		"requests", s.Requests,
		"not_found", s.NotFound,
		"bad_request", s.BadRequest,
		"unavailable", s.Unavailable,
		"errors", s.Errors,
		"cache_hit_ratio", s.CacheHitRatio(),
		"cache_errors", s.CacheErrors,
		"primary_calls", s.PrimaryCalls,
		"replica_calls", s.ReplicaCalls,
		"store_failures", s.StoreFailures,
		"fallbacks", s.Fallbacks,
		"p50_ms", s.P50LatencyMs,
		"p95_ms", s.P95LatencyMs,
		"p99_ms", s.P99LatencyMs,
	)
}

// Close does nothing for logging publisher.
func (p *LoggingPublisher) Close() error {
	return nil
}

func (p *LoggingPublisher) mergeTags(tags []string) []string {
	return mergeTags(p.baseTags, tags)
}

var _ types.Publisher = (*LoggingPublisher)(nil)
