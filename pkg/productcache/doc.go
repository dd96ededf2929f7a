// Package productcache is a product catalog served through a cache-aside
// read path over a primary/replica relational store.
//
// Reads check the cache first and never touch the store on a hit. On a miss
// the replica is queried, and a replica that cannot be reached is replaced by
// exactly one read of the primary. Writes go to the primary only: Create
// prefills the cache, Update deletes the entry once the commit is
// acknowledged. Cache failures are absorbed and never change a response.
//
// # Quick Start
//
// Open a catalog over a local SQLite file with the in-memory cache backend:
//
//	cfg := productcache.Config()
//	cfg.Store.Driver = "sqlite3"
//	cfg.Store.Primary.DSN = productcache.Secret("file:products.db?_busy_timeout=5000")
//	cfg.Cache.Backend = "memory"
//
//	app, err := productcache.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//
//	if err := app.CreateSchema(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Operations
//
//	created, err := app.Create(ctx, productcache.NewProduct{Name: "Juice", PriceCents: 250})
//
//	product, err := app.Get(ctx, created.ID)
//	if productcache.IsNotFound(err) {
//	    // no such product
//	}
//
//	price := int64(300)
//	updated, err := app.Update(ctx, created.ID, productcache.ProductPatch{PriceCents: &price})
//
// An error matching ErrServiceUnavailable means no store target could be
// reached; its UnavailableError carries the failure kind.
//
// # HTTP
//
// Handler serves the JSON API:
//
//	GET  /products/{id}
//	POST /products
//	PUT  /products/{id}
//	GET  /healthz
//	GET  /readyz
//
// # Configuration
//
// Configuration is loaded from an optional JSON file and overridden by
// environment variables (PRIMARY_DSN, REPLICA_DSN, REDIS_HOST, REDIS_PORT,
// CACHE_TTL_SECONDS and the PRODUCTCACHE_* family):
//
//	app, err := productcache.NewFromFile("config.json")
//
// # Observability
//
// Without WithMetrics the App keeps its own tracker, readable via Metrics.
// Plug in any Logger with WithLogger; it receives structured key/value pairs.
package productcache
