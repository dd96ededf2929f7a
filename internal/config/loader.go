package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// maxOperationTimeout bounds the cache timeout so a dead cache never costs a full second.
const maxOperationTimeout = time.Second

// Load loads configuration from a JSON file.
// If the file doesn't exist, returns default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, use defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnv loads configuration from a JSON file and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

//nolint:gocyclo // Environment variable parsing requires many conditional checks
func applyEnvOverrides(cfg *Config) {
	// Unprefixed deployment variables.
	if v := os.Getenv("PRIMARY_DSN"); v != "" {
		cfg.Store.Primary.DSN = NewSecretString(v)
	}
	if v := os.Getenv("REPLICA_DSN"); v != "" {
		cfg.Store.Replica.DSN = NewSecretString(v)
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Cache.Address = replaceHost(cfg.Cache.Address, v)
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		cfg.Cache.Address = replacePort(cfg.Cache.Address, v)
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		cfg.Cache.TTL = parseDuration(v, cfg.Cache.TTL)
	}

	if v := os.Getenv("PRODUCTCACHE_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("PRODUCTCACHE_STORE_MAX_OPEN_CONNS"); v != "" {
		n := parseInt(v, cfg.Store.Primary.MaxOpenConns)
		cfg.Store.Primary.MaxOpenConns = n
		cfg.Store.Replica.MaxOpenConns = n
	}

	if v := os.Getenv("PRODUCTCACHE_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("PRODUCTCACHE_CACHE_ADDRESS"); v != "" {
		cfg.Cache.Address = v
	}
	if v := os.Getenv("PRODUCTCACHE_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = NewSecretString(v)
	}
	if v := os.Getenv("PRODUCTCACHE_CACHE_DB"); v != "" {
		cfg.Cache.DB = parseInt(v, cfg.Cache.DB)
	}
	if v := os.Getenv("PRODUCTCACHE_CACHE_KEY_PREFIX"); v != "" {
		cfg.Cache.KeyPrefix = v
	}
	if v := os.Getenv("PRODUCTCACHE_CACHE_TTL"); v != "" {
		cfg.Cache.TTL = parseDuration(v, cfg.Cache.TTL)
	}
	if v := os.Getenv("PRODUCTCACHE_CACHE_TIMEOUT"); v != "" {
		cfg.Cache.OperationTimeout = parseDuration(v, cfg.Cache.OperationTimeout)
	}
	if v := os.Getenv("PRODUCTCACHE_CACHE_POOL_SIZE"); v != "" {
		cfg.Cache.PoolSize = parseInt(v, cfg.Cache.PoolSize)
	}

	if v := os.Getenv("PRODUCTCACHE_CIRCUIT_BREAKER_ENABLED"); v != "" {
		cfg.Cache.CircuitBreaker.Enabled = parseBool(v)
	}
	if v := os.Getenv("PRODUCTCACHE_CIRCUIT_BREAKER_FAILURE_THRESHOLD"); v != "" {
		cfg.Cache.CircuitBreaker.FailureThreshold = parseInt(v, cfg.Cache.CircuitBreaker.FailureThreshold)
	}
	if v := os.Getenv("PRODUCTCACHE_CIRCUIT_BREAKER_OPEN_DURATION"); v != "" {
		cfg.Cache.CircuitBreaker.OpenDuration = parseDuration(v, cfg.Cache.CircuitBreaker.OpenDuration)
	}

	if v := os.Getenv("PRODUCTCACHE_HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("PRODUCTCACHE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("PRODUCTCACHE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv("PRODUCTCACHE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}

	if v := os.Getenv("DD_AGENT_HOST"); v != "" {
		cfg.Metrics.DataDog.AgentHost = v
		cfg.Metrics.DataDog.Enabled = true
	}
	if v := os.Getenv("DD_DOGSTATSD_PORT"); v != "" {
		cfg.Metrics.DataDog.Port = parseInt(v, cfg.Metrics.DataDog.Port)
	}
	if v := os.Getenv("DD_SERVICE"); v != "" {
		cfg.Metrics.DataDog.Prefix = v
	}
	if v := os.Getenv("DD_ENV"); v != "" {
		cfg.Metrics.DataDog.Tags = append(cfg.Metrics.DataDog.Tags, "env:"+v)
	}
	if v := os.Getenv("DD_VERSION"); v != "" {
		cfg.Metrics.DataDog.Tags = append(cfg.Metrics.DataDog.Tags, "version:"+v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Store.Driver)
	}
	if c.Store.Primary.DSN.IsEmpty() {
		return fmt.Errorf("store.primary.dsn is required")
	}
	if c.Store.Primary.MaxOpenConns < 0 || c.Store.Replica.MaxOpenConns < 0 {
		return fmt.Errorf("store maxOpenConns must not be negative")
	}

	switch c.Cache.Backend {
	case BackendRedis:
		if c.Cache.Address == "" {
			return fmt.Errorf("cache.address is required when the redis backend is selected")
		}
		if c.Cache.PoolSize <= 0 {
			return fmt.Errorf("cache.poolSize must be positive")
		}
	case BackendMemory:
		if c.Cache.MemoryMaxSizeMB <= 0 {
			return fmt.Errorf("cache.memoryMaxSizeMB must be positive")
		}
		if c.Cache.MemoryShards <= 0 || (c.Cache.MemoryShards&(c.Cache.MemoryShards-1)) != 0 {
			return fmt.Errorf("cache.memoryShards must be a positive power of 2")
		}
	case BackendDisabled:
	default:
		return fmt.Errorf("cache.backend must be one of redis, memory, disabled, got %q", c.Cache.Backend)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Cache.OperationTimeout <= 0 || c.Cache.OperationTimeout >= maxOperationTimeout {
		return fmt.Errorf("cache.operationTimeout must be between 0 and %v, got %v", maxOperationTimeout, c.Cache.OperationTimeout)
	}

	if c.Cache.CircuitBreaker.Enabled {
		if c.Cache.CircuitBreaker.FailureThreshold <= 0 {
			return fmt.Errorf("cache.circuitBreaker.failureThreshold must be positive")
		}
		if c.Cache.CircuitBreaker.OpenDuration <= 0 {
			return fmt.Errorf("cache.circuitBreaker.openDuration must be positive")
		}
	}

	if c.Metrics.Enabled && c.Metrics.PublishInterval <= 0 {
		return fmt.Errorf("metrics.publishInterval must be positive")
	}

	return nil
}

// ReplicaDSN returns the replica DSN, falling back to the primary when none is configured.
func (c StoreConfig) ReplicaDSN() SecretString {
	if c.Replica.DSN.IsEmpty() {
		return c.Primary.DSN
	}
	return c.Replica.DSN
}

// SharedTarget reports whether primary and replica point at the same endpoint.
func (c StoreConfig) SharedTarget() bool {
	return c.ReplicaDSN().Value() == c.Primary.DSN.Value()
}

func replaceHost(addr, host string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		port = "6379"
	}
	return net.JoinHostPort(strings.TrimSpace(host), port)
}

func replacePort(addr, port string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if host == "" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strings.TrimSpace(port))
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func parseInt(s string, defaultVal int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	return v
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}
