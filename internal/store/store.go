// Package store is the relational product store behind the catalog.
// It runs each call against exactly one target and never retries or reroutes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/LavishGent/productcache/internal/config"
	"github.com/LavishGent/productcache/internal/types"
)

const (
	postgresNow = "now()"
	sqliteNow   = "strftime('%Y-%m-%d %H:%M:%f', 'now')"

	// Update timestamps never repeat or go back, even within one clock tick.
	postgresTouch = "greatest(now(), updated_at + interval '1 microsecond')"
	sqliteTouch   = "max(" + sqliteNow + ", strftime('%Y-%m-%d %H:%M:%f', updated_at, '+0.001 seconds'))"
)

// Store runs product queries against a primary and a replica database.
// Primary and replica may share one handle.
type Store struct {
	primary *bun.DB
	replica *bun.DB
	shared  bool
	driver  string
	now     bun.Safe
	touch   bun.Safe
	logger  *slog.Logger
}

// Open creates the database handles described by cfg. Connections are established
// lazily, so an unreachable target surfaces on its first call rather than here.
func Open(cfg config.StoreConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store", "driver", cfg.Driver)

	dialect, stamps, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	primary, err := openDB(cfg.Driver, cfg.Primary.DSN.Value(), cfg.Primary, dialect, logger.With("target", "primary"))
	if err != nil {
		return nil, fmt.Errorf("failed to open primary: %w", err)
	}

	s := &Store{
		primary: primary,
		replica: primary,
		shared:  true,
		driver:  cfg.Driver,
		now:     stamps.now,
		touch:   stamps.touch,
		logger:  logger,
	}

	if !cfg.SharedTarget() {
		replicaPool := cfg.Replica
		replica, err := openDB(cfg.Driver, cfg.ReplicaDSN().Value(), replicaPool, dialect, logger.With("target", "replica"))
		if err != nil {
			_ = primary.Close()
			return nil, fmt.Errorf("failed to open replica: %w", err)
		}
		s.replica = replica
		s.shared = false
	} else {
		logger.Info("Replica shares the primary connection pool")
	}

	return s, nil
}

// clock holds the SQL expressions that stamp updated_at on insert and update.
type clock struct {
	now   bun.Safe
	touch bun.Safe
}

func dialectFor(driver string) (schema.Dialect, clock, error) {
	switch driver {
	case config.DriverPostgres:
		return pgdialect.New(), clock{now: postgresNow, touch: postgresTouch}, nil
	case config.DriverSQLite:
		return sqlitedialect.New(), clock{now: sqliteNow, touch: sqliteTouch}, nil
	default:
		return nil, clock{}, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func openDB(driver, dsn string, pool config.TargetConfig, dialect schema.Dialect, logger *slog.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	db := bun.NewDB(sqldb, dialect)
	db.AddQueryHook(&queryLogger{logger: logger})
	return db, nil
}

func (s *Store) db(target types.Target) *bun.DB {
	if target == types.TargetReplica {
		return s.replica
	}
	return s.primary
}

// FetchByID reads one product from target. An absent row yields nil, nil.
func (s *Store) FetchByID(ctx context.Context, target types.Target, id int64) (*types.Product, error) {
	m := new(productModel)
	err := s.db(target).NewSelect().
		Model(m).
		Where("p.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Classify(target, "fetch", err)
	}

	p := m.toProduct()
	return &p, nil
}

// Insert creates a product on the primary and returns the stored row.
func (s *Store) Insert(ctx context.Context, in types.NewProduct) (types.Product, error) {
	m := &productModel{Name: in.Name, PriceCents: in.PriceCents}

	err := s.primary.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewInsert().
			Model(m).
			Column("name", "price_cents", "updated_at").
			Value("updated_at", string(s.now)).
			Returning("*").
			Scan(ctx)
	})
	if err != nil {
		return types.Product{}, Classify(types.TargetPrimary, "insert", err)
	}

	return m.toProduct(), nil
}

// Update applies patch to the product with the given id on the primary and
// always advances updated_at past its previous value. An absent row yields nil, nil.
func (s *Store) Update(ctx context.Context, id int64, patch types.ProductPatch) (*types.Product, error) {
	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return nil, types.ErrBadRequest
	}

	m := new(productModel)
	err := s.primary.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().Model(m)
		for _, a := range assignments {
			q = q.Set("? = ?", bun.Ident(a.Column), a.Value)
		}
		return q.Set("? = ?", bun.Ident("updated_at"), s.touch).
			Where("id = ?", id).
			Returning("*").
			Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Classify(types.TargetPrimary, "update", err)
	}

	p := m.toProduct()
	return &p, nil
}

// Ping checks that target accepts connections.
func (s *Store) Ping(ctx context.Context, target types.Target) error {
	if err := s.db(target).PingContext(ctx); err != nil {
		return Classify(target, "ping", err)
	}
	return nil
}

// CreateSchema creates the products table on the primary if it does not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	ddl := postgresSchema
	if s.driver == config.DriverSQLite {
		ddl = sqliteSchema
	}
	if _, err := s.primary.ExecContext(ctx, ddl); err != nil {
		return Classify(types.TargetPrimary, "create_schema", err)
	}
	return nil
}

// Shared reports whether primary and replica use the same handle.
func (s *Store) Shared() bool {
	return s.shared
}

// Close closes both handles.
func (s *Store) Close() error {
	var errs []error
	if err := s.primary.Close(); err != nil {
		errs = append(errs, err)
	}
	if !s.shared {
		if err := s.replica.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type queryLogger struct {
	logger *slog.Logger
}

func (h *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLogger) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Debug("Query failed",
			"operation", event.Operation(),
			"duration", time.Since(event.StartTime),
			"error", event.Err,
		)
		return
	}
	h.logger.Debug("Query executed",
		"operation", event.Operation(),
		"duration", time.Since(event.StartTime),
	)
}

var _ types.ProductStore = (*Store)(nil)
