package productcache

import (
	"github.com/LavishGent/productcache/internal/types"
)

type (
	// HealthStatus represents the overall health state.
	HealthStatus = types.HealthStatus

	// HealthReport contains the health of the cache, primary and replica.
	HealthReport = types.HealthReport

	// DependencyHealth is the probe result of one dependency.
	DependencyHealth = types.DependencyHealth

	// MetricsSnapshot contains a point-in-time view of catalog metrics.
	MetricsSnapshot = types.MetricsSnapshot
)

const (
	HealthStatusHealthy   = types.HealthStatusHealthy
	HealthStatusDegraded  = types.HealthStatusDegraded
	HealthStatusUnhealthy = types.HealthStatusUnhealthy
)
