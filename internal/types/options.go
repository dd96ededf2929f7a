package types

// ServiceOptions holds the collaborators injected into the catalog service.
// Nil fields are replaced with defaults.
type ServiceOptions struct {
	// Logger is the structured logger to use.
	Logger Logger

	// Metrics is the metrics recorder.
	Metrics MetricsRecorder

	// Serializer encodes products stored in the cache.
	Serializer Serializer

	// CacheAddress overrides the Redis address from config.
	CacheAddress string

	// CachePassword overrides the Redis password from config.
	// Uses SecretString to prevent accidental logging of sensitive values.
	CachePassword SecretString

	// DisableCache replaces the configured cache backend with a disabled one.
	DisableCache bool

	// DisableCircuitBreaker lets every cache call reach the backend.
	DisableCircuitBreaker bool
}

// Option is a functional option for configuring the service.
type Option func(*ServiceOptions)

// ApplyOptions applies functional options to a zero ServiceOptions.
func ApplyOptions(opts ...Option) *ServiceOptions {
	options := &ServiceOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
