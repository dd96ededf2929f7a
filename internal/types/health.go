package types

import "time"

// HealthStatus represents the overall health state.
type HealthStatus int

const (
	// HealthStatusHealthy indicates all dependencies are reachable.
	HealthStatusHealthy HealthStatus = iota + 1
	// HealthStatusDegraded indicates the service still answers but a cache or replica is down.
	HealthStatusDegraded
	// HealthStatusUnhealthy indicates the primary store is unreachable.
	HealthStatusUnhealthy
)

// String returns the string representation of health status.
func (s HealthStatus) String() string {
	switch s {
	case HealthStatusHealthy:
		return "healthy"
	case HealthStatusDegraded:
		return "degraded"
	case HealthStatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON payloads.
func (s HealthStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DependencyHealth is the probe result of one dependency.
type DependencyHealth struct {
	Name      string        `json:"name"`
	Available bool          `json:"available"`
	Latency   time.Duration `json:"latency_ns"`
	Error     string        `json:"error,omitempty"`
}

// HealthReport contains the health of every dependency of the catalog.
type HealthReport struct {
	Timestamp time.Time        `json:"timestamp"`
	Status    HealthStatus     `json:"status"`
	Primary   DependencyHealth `json:"primary"`
	Replica   DependencyHealth `json:"replica"`
	Cache     DependencyHealth `json:"cache"`
}

// MetricsSnapshot contains a point-in-time view of catalog metrics.
//
//nolint:govet // Metrics struct with many counters - grouping by category improves readability
type MetricsSnapshot struct {
	Timestamp time.Time
	// Cache counters
	CacheHits   int64
	CacheMisses int64
	CacheErrors int64

	// Store counters
	PrimaryCalls  int64
	ReplicaCalls  int64
	StoreFailures int64
	Fallbacks     int64

	// Outcome counters
	Requests    int64
	NotFound    int64
	BadRequest  int64
	Unavailable int64
	Errors      int64

	// Latency metrics (milliseconds)
	AvgLatencyMs float64
	P50LatencyMs float64
	P95LatencyMs float64
	P99LatencyMs float64

	CircuitBreakerChanges int64
}

// CacheHitRatio calculates the cache hit ratio.
func (s *MetricsSnapshot) CacheHitRatio() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// FallbackRatio is the share of replica reads that had to fall back to the primary.
func (s *MetricsSnapshot) FallbackRatio() float64 {
	if s.ReplicaCalls == 0 {
		return 0
	}
	return float64(s.Fallbacks) / float64(s.ReplicaCalls)
}
