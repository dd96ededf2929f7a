package productcache

import (
	"github.com/LavishGent/productcache/internal/metrics"
	"github.com/LavishGent/productcache/internal/types"
)

type (
	Option         = types.Option
	ServiceOptions = types.ServiceOptions
)

func WithLogger(logger Logger) Option {
	return func(o *ServiceOptions) {
		o.Logger = logger
	}
}

func WithMetrics(metrics MetricsRecorder) Option {
	return func(o *ServiceOptions) {
		o.Metrics = metrics
	}
}

func WithSerializer(serializer Serializer) Option {
	return func(o *ServiceOptions) {
		o.Serializer = serializer
	}
}

// WithCacheAddress overrides the Redis address from config.
func WithCacheAddress(addr string) Option {
	return func(o *ServiceOptions) {
		o.CacheAddress = addr
	}
}

func WithCachePassword(password string) Option {
	return func(o *ServiceOptions) {
		o.CachePassword = types.NewSecretString(password)
	}
}

// WithoutCache serves every read from the store.
func WithoutCache() Option {
	return func(o *ServiceOptions) {
		o.DisableCache = true
	}
}

func WithoutCircuitBreaker() Option {
	return func(o *ServiceOptions) {
		o.DisableCircuitBreaker = true
	}
}

// NoOpMetrics returns a recorder that discards every measurement.
func NoOpMetrics() MetricsRecorder {
	return metrics.NewNoOpRecorder()
}
