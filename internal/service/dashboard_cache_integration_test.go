//go:build integration

package service

// Exercises the dashboard cache against a real Redis.
// Run with: go test -tags integration ./internal/service/... -v

import (
	"context"
	"testing"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/infra"
	"github.com/brehash/kscinventory-sub002/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	c, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// writeDuringRead invalidates the dashboard while the stats are being
// loaded, the way a stock change racing a dashboard request does.
type writeDuringRead struct {
	*stubProductRepo
	rdb    *redis.Client
	writes int
}

func (r *writeDuringRead) ListAll(ctx context.Context) ([]model.Product, error) {
	if r.writes > 0 {
		r.writes--
		invalidateDashboard(ctx, r.rdb)
	}
	return r.stubProductRepo.ListAll(ctx)
}

func TestDashboardCache(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	products := &writeDuringRead{
		stubProductRepo: newStubProductRepo(model.Product{ID: "1", Name: "Mug", Quantity: 4, Price: 10}),
		rdb:             rdb,
		writes:          1,
	}
	svc := NewDashboardService(DashboardServiceDeps{
		Products: products,
		Orders:   newStubOrderRepo(nil),
		Catalog:  newStubCatalogRepo(),
		Activity: NewActivityService(&stubActivityRepo{}),
		Redis:    rdb,
		TTL:      time.Minute,
	})

	st, err := svc.Stats(ctx, false)
	require.NoError(t, err)
	assert.False(t, st.Cached)
	n, err := rdb.Exists(ctx, DashboardCacheKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "a fill that raced an invalidation must not be cached")

	st, err = svc.Stats(ctx, false)
	require.NoError(t, err)
	assert.False(t, st.Cached)

	st, err = svc.Stats(ctx, false)
	require.NoError(t, err)
	assert.True(t, st.Cached)
	assert.Equal(t, 4, st.TotalUnits)

	invalidateDashboard(ctx, rdb)
	st, err = svc.Stats(ctx, false)
	require.NoError(t, err)
	assert.False(t, st.Cached)
}
