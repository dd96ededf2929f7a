package catalog

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LavishGent/productcache/internal/types"
)

// DefaultProbeTimeout bounds each dependency probe of Health.
const DefaultProbeTimeout = 2 * time.Second

// TargetPinger is implemented by stores that can probe a single endpoint.
type TargetPinger interface {
	Ping(ctx context.Context, target types.Target) error
}

// CachePinger is implemented by caches that can probe their backend.
type CachePinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// Service is the full product catalog: reads, writes and health.
type Service struct {
	*Reader
	*Writer

	store        TargetPinger
	cache        CachePinger
	probeTimeout time.Duration
}

// New builds a Service. If deps.Store or deps.Cache cannot be probed, the
// corresponding dependency is reported as available.
func New(deps Deps) *Service {
	s := &Service{
		Reader:       NewReader(deps),
		Writer:       NewWriter(deps),
		probeTimeout: DefaultProbeTimeout,
	}
	s.store, _ = deps.Store.(TargetPinger)
	s.cache, _ = deps.Cache.(CachePinger)
	return s
}

// Health probes the cache, the primary and the replica concurrently.
// A primary outage is unhealthy; a cache or replica outage only degrades
// the service since reads still have a path to the data.
func (s *Service) Health(ctx context.Context) *types.HealthReport {
	report := &types.HealthReport{
		Timestamp: time.Now(),
		Primary:   types.DependencyHealth{Name: types.TargetPrimary.String()},
		Replica:   types.DependencyHealth{Name: types.TargetReplica.String()},
		Cache:     types.DependencyHealth{Name: "cache"},
	}

	var g errgroup.Group
	g.Go(func() error {
		s.probe(ctx, &report.Primary, s.pingTarget(types.TargetPrimary))
		return nil
	})
	g.Go(func() error {
		s.probe(ctx, &report.Replica, s.pingTarget(types.TargetReplica))
		return nil
	})
	g.Go(func() error {
		if s.cache != nil {
			report.Cache.Name = s.cache.Name()
		}
		s.probe(ctx, &report.Cache, s.pingCache)
		return nil
	})
	_ = g.Wait()

	switch {
	case !report.Primary.Available:
		report.Status = types.HealthStatusUnhealthy
	case !report.Replica.Available || !report.Cache.Available:
		report.Status = types.HealthStatusDegraded
	default:
		report.Status = types.HealthStatusHealthy
	}
	return report
}

func (s *Service) probe(ctx context.Context, dep *types.DependencyHealth, ping func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	dep.Latency = time.Since(start)
	dep.Available = err == nil
	if err != nil {
		dep.Error = err.Error()
	}
}

func (s *Service) pingTarget(target types.Target) func(context.Context) error {
	return func(ctx context.Context) error {
		if s.store == nil {
			return nil
		}
		return s.store.Ping(ctx, target)
	}
}

func (s *Service) pingCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Ping(ctx)
}
