package catalog

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LavishGent/productcache/internal/cache"
	"github.com/LavishGent/productcache/internal/config"
	"github.com/LavishGent/productcache/internal/metrics"
	"github.com/LavishGent/productcache/internal/store"
	"github.com/LavishGent/productcache/internal/types"
)

type stack struct {
	svc     *Service
	mr      *miniredis.Miniredis
	adapter *cache.Adapter
	tracker *metrics.Tracker
	cfg     *config.Config
}

// newStack wires the real store, redis layer and adapter over SQLite and miniredis.
// A non-empty replicaDSN overrides the replica target.
func newStack(t *testing.T, replicaDSN string) *stack {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := config.ForTestingWithRedis(mr.Addr())
	cfg.Store.Primary.DSN = config.NewSecretString("file:" + filepath.Join(t.TempDir(), "products.db") + "?_busy_timeout=5000")
	if replicaDSN != "" {
		cfg.Store.Replica.DSN = config.NewSecretString(replicaDSN)
	}

	st, err := store.Open(cfg.Store, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.CreateSchema(context.Background()))

	layer, err := cache.NewLayer(cfg.Cache, nil)
	require.NoError(t, err)

	tracker := metrics.NewTracker()
	adapter := cache.NewAdapter(layer, cache.AdapterOptions{
		Timeout: cfg.Cache.OperationTimeout,
		Metrics: tracker,
	})
	t.Cleanup(func() { _ = adapter.Close() })

	return &stack{
		svc: New(Deps{
			Cache:   adapter,
			Store:   st,
			Metrics: tracker,
			TTL:     cfg.Cache.TTL,
		}),
		mr:      mr,
		adapter: adapter,
		tracker: tracker,
		cfg:     cfg,
	}
}

func (s *stack) redisKey(id int64) string {
	return s.cfg.Cache.KeyPrefix + cache.ProductKey(id)
}

func TestIntegrationCreateThenGet(t *testing.T) {
	s := newStack(t, "")
	ctx := context.Background()

	created, err := s.svc.Create(ctx, types.NewProduct{Name: "Juice", PriceCents: 250})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Juice", created.Name)
	assert.Equal(t, int64(250), created.PriceCents)
	assert.False(t, created.UpdatedAt.IsZero())

	raw, err := s.mr.Get(s.redisKey(created.ID))
	require.NoError(t, err, "create prefills the cache")
	var cached types.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, created.ID, cached.ID)
	assert.Equal(t, created.Name, cached.Name)
	assert.True(t, created.UpdatedAt.Equal(cached.UpdatedAt))

	ttl := s.mr.TTL(s.redisKey(created.ID))
	assert.Equal(t, s.cfg.Cache.TTL, ttl)

	s.mr.Del(s.redisKey(created.ID))

	got, err := s.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.PriceCents, got.PriceCents)
	assert.True(t, s.mr.Exists(s.redisKey(created.ID)), "read repopulates the cache")
}

func TestIntegrationUpdateInvalidates(t *testing.T) {
	s := newStack(t, "")
	ctx := context.Background()

	created, err := s.svc.Create(ctx, types.NewProduct{Name: "Lamp", PriceCents: 1999})
	require.NoError(t, err)
	require.True(t, s.mr.Exists(s.redisKey(created.ID)))

	name := "Desk Lamp"
	updated, err := s.svc.Update(ctx, created.ID, types.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", updated.Name)
	assert.Equal(t, int64(1999), updated.PriceCents)
	assert.False(t, s.mr.Exists(s.redisKey(created.ID)), "update deletes the entry")

	got, err := s.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", got.Name)
}

func TestIntegrationUpdatedAtStrictlyIncreases(t *testing.T) {
	s := newStack(t, "")
	ctx := context.Background()

	created, err := s.svc.Create(ctx, types.NewProduct{Name: "Mug", PriceCents: 800})
	require.NoError(t, err)

	prev := created.UpdatedAt
	for i := 0; i < 200; i++ {
		price := int64(800 + i)
		updated, err := s.svc.Update(ctx, created.ID, types.ProductPatch{PriceCents: &price})
		require.NoError(t, err)
		require.True(t, updated.UpdatedAt.After(prev),
			"update %d: updated_at %v is not after %v", i, updated.UpdatedAt, prev)
		prev = updated.UpdatedAt
	}

	got, err := s.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(prev))
}

func TestIntegrationReplicaOutage(t *testing.T) {
	missing := "file:" + filepath.Join(t.TempDir(), "missing", "replica.db") + "?_busy_timeout=5000"
	s := newStack(t, missing)
	ctx := context.Background()

	created, err := s.svc.Create(ctx, types.NewProduct{Name: "Kettle", PriceCents: 4500})
	require.NoError(t, err)
	s.mr.Del(s.redisKey(created.ID))

	got, err := s.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kettle", got.Name)
	assert.True(t, s.mr.Exists(s.redisKey(created.ID)))

	snap := s.tracker.Snapshot()
	assert.Equal(t, int64(1), snap.Fallbacks)
	assert.Equal(t, int64(1), snap.StoreFailures)

	report := s.svc.Health(ctx)
	assert.Equal(t, types.HealthStatusDegraded, report.Status)
	assert.False(t, report.Replica.Available)
	assert.Equal(t, "redis", report.Cache.Name)
}

func TestIntegrationCacheOutageIsAbsorbed(t *testing.T) {
	s := newStack(t, "")
	ctx := context.Background()

	created, err := s.svc.Create(ctx, types.NewProduct{Name: "Mug", PriceCents: 800})
	require.NoError(t, err)

	s.mr.Close()

	start := time.Now()
	got, err := s.svc.Get(ctx, created.ID)
	require.NoError(t, err, "a dead cache must not fail the read")
	assert.Equal(t, "Mug", got.Name)
	assert.Less(t, time.Since(start), 2*time.Second)

	price := int64(900)
	_, err = s.svc.Update(ctx, created.ID, types.ProductPatch{PriceCents: &price})
	require.NoError(t, err, "a failed invalidation is not reported")

	assert.Positive(t, s.tracker.Snapshot().CacheErrors)
	assert.Equal(t, types.HealthStatusDegraded, s.svc.Health(ctx).Status)
}
