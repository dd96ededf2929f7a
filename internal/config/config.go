// Package config provides configuration management for productcache.
package config

import (
	"time"

	"github.com/LavishGent/productcache/internal/types"
)

// SecretString is a string type that redacts its value when marshaled to JSON.
type SecretString = types.SecretString

// NewSecretString creates a new SecretString with the provided value.
func NewSecretString(value string) SecretString {
	return types.NewSecretString(value)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	BackendRedis    = "redis"
	BackendMemory   = "memory"
	BackendDisabled = "disabled"
)

// Config contains all configuration for the productcache service.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type Config struct {
	Store   StoreConfig   `json:"store"`
	Cache   CacheConfig   `json:"cache"`
	HTTP    HTTPConfig    `json:"http"`
	Metrics MetricsConfig `json:"metrics"`
	Log     LogConfig     `json:"log"`
}

// StoreConfig contains configuration for the relational store.
type StoreConfig struct {
	Driver  string       `json:"driver"`
	Primary TargetConfig `json:"primary"`
	Replica TargetConfig `json:"replica"`
}

// TargetConfig describes one store endpoint and its connection pool.
//
//nolint:govet // Small config struct - minimal alignment benefit
type TargetConfig struct {
	DSN             SecretString  `json:"dsn"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

// CacheConfig contains configuration for the cache layer.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type CacheConfig struct {
	Backend          string               `json:"backend"`
	Address          string               `json:"address"`
	Password         SecretString         `json:"password"`
	DB               int                  `json:"db"`
	KeyPrefix        string               `json:"keyPrefix"`
	TTL              time.Duration        `json:"ttl"`
	OperationTimeout time.Duration        `json:"operationTimeout"`
	PoolSize         int                  `json:"poolSize"`
	MemoryShards     int                  `json:"memoryShards"`
	MemoryMaxSizeMB  int                  `json:"memoryMaxSizeMB"`
	CircuitBreaker   CircuitBreakerConfig `json:"circuitBreaker"`
}

// CircuitBreakerConfig contains configuration for the circuit breaker pattern.
type CircuitBreakerConfig struct {
	Enabled             bool          `json:"enabled"`
	FailureThreshold    int           `json:"failureThreshold"`
	SuccessThreshold    int           `json:"successThreshold"`
	OpenDuration        time.Duration `json:"openDuration"`
	HalfOpenMaxRequests int           `json:"halfOpenMaxRequests"`
}

// HTTPConfig contains configuration for the HTTP server.
type HTTPConfig struct {
	Address         string        `json:"address"`
	ReadTimeout     time.Duration `json:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
}

// MetricsConfig contains configuration for metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type MetricsConfig struct {
	PublishInterval time.Duration `json:"publishInterval"`
	DataDog         DataDogConfig `json:"datadog"`
	Enabled         bool          `json:"enabled"`
}

// DataDogConfig contains configuration for DataDog metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type DataDogConfig struct {
	Tags      []string `json:"tags"`
	AgentHost string   `json:"agentHost"`
	Prefix    string   `json:"prefix"`
	Port      int      `json:"port"`
	Enabled   bool     `json:"enabled"`
}

// LogConfig selects the slog handler built by the server binary.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}
