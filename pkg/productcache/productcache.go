package productcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/LavishGent/productcache/internal/cache"
	"github.com/LavishGent/productcache/internal/catalog"
	"github.com/LavishGent/productcache/internal/config"
	"github.com/LavishGent/productcache/internal/httpapi"
	"github.com/LavishGent/productcache/internal/metrics"
	"github.com/LavishGent/productcache/internal/resilience"
	"github.com/LavishGent/productcache/internal/store"
	"github.com/LavishGent/productcache/internal/types"
)

// App is a running product catalog with its store and cache connections.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	cache   *cache.Adapter
	service *catalog.Service
	tracker *metrics.Tracker
	handler http.Handler
}

// New opens the store and cache described by cfg. Neither the store nor a
// Redis server needs to be reachable yet; unreachable dependencies surface
// per request.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := *cfg
	options := types.ApplyOptions(opts...)

	logger := slog.Default()
	if options.Logger != nil {
		logger = slog.New(slogAdapter{logger: options.Logger})
	}

	if options.CacheAddress != "" {
		c.Cache.Address = options.CacheAddress
	}
	if !options.CachePassword.IsEmpty() {
		c.Cache.Password = options.CachePassword
	}
	if options.DisableCache {
		c.Cache.Backend = config.BackendDisabled
	}
	if options.DisableCircuitBreaker {
		c.Cache.CircuitBreaker.Enabled = false
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	app := &App{cfg: &c, logger: logger}

	var recorder types.MetricsRecorder = options.Metrics
	if recorder == nil {
		app.tracker = metrics.NewTracker()
		recorder = app.tracker
	}

	st, err := store.Open(c.Store, logger)
	if err != nil {
		return nil, err
	}
	app.store = st

	layer, err := cache.NewLayer(c.Cache, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	app.cache = cache.NewAdapter(layer, cache.AdapterOptions{
		Timeout:    c.Cache.OperationTimeout,
		Serializer: options.Serializer,
		Metrics:    recorder,
		Breaker:    resilience.New("cache-"+layer.Name(), c.Cache.CircuitBreaker),
		Logger:     logger,
	})

	app.service = catalog.New(catalog.Deps{
		Cache:   app.cache,
		Store:   st,
		Metrics: recorder,
		Logger:  logger,
		TTL:     c.Cache.TTL,
	})
	app.handler = httpapi.NewRouter(app.service, httpapi.RouterOptions{Logger: logger})

	logger.Info("Product catalog initialized",
		"driver", c.Store.Driver,
		"shared_target", st.Shared(),
		"cache", layer.Name(),
		"ttl", c.Cache.TTL,
	)
	return app, nil
}

// NewFromFile loads a JSON config file, applies environment overrides and
// opens the catalog. A missing file yields the default configuration.
func NewFromFile(path string, opts ...Option) (*App, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Config returns a default configuration that can be modified before calling New.
func Config() *config.Config {
	return config.DefaultConfig()
}

// TestConfig returns a configuration suitable for unit tests: SQLite and
// the in-memory cache backend.
func TestConfig() *config.Config {
	return config.ForTesting()
}

// Get returns the product with the given id.
func (a *App) Get(ctx context.Context, id int64) (Product, error) {
	return a.service.Get(ctx, id)
}

// Create inserts a product on the primary and prefills the cache.
func (a *App) Create(ctx context.Context, in NewProduct) (Product, error) {
	return a.service.Create(ctx, in)
}

// Update applies patch on the primary and invalidates the cache entry.
func (a *App) Update(ctx context.Context, id int64, patch ProductPatch) (Product, error) {
	return a.service.Update(ctx, id, patch)
}

// Health probes the cache, the primary and the replica.
func (a *App) Health(ctx context.Context) *HealthReport {
	return a.service.Health(ctx)
}

// CreateSchema creates the products table on the primary if needed.
func (a *App) CreateSchema(ctx context.Context) error {
	return a.store.CreateSchema(ctx)
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return a.handler
}

// HandlerWithPublisher returns the HTTP API reporting request timings to pub.
func (a *App) HandlerWithPublisher(pub Publisher) http.Handler {
	return httpapi.NewRouter(a.service, httpapi.RouterOptions{Logger: a.logger, Publisher: pub})
}

// Metrics returns the built-in tracker snapshot. It reports false when a
// recorder was supplied with WithMetrics.
func (a *App) Metrics() (MetricsSnapshot, bool) {
	if a.tracker == nil {
		return MetricsSnapshot{}, false
	}
	return a.tracker.Snapshot(), true
}

// Tracker returns the built-in metrics tracker, or nil when WithMetrics was used.
func (a *App) Tracker() *metrics.Tracker {
	return a.tracker
}

// Configuration returns the effective configuration after options were applied.
func (a *App) Configuration() *Configuration {
	return a.cfg
}

// Close releases the cache and store connections.
func (a *App) Close() error {
	var errs []error
	if err := a.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
