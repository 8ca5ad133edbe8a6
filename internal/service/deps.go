package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// JobDispatcher enqueues background work. worker.Dispatcher implements it;
// a nil JobDispatcher disables background pushes.
type JobDispatcher interface {
	EnqueueStockPush(ctx context.Context, productID string) error
	EnqueueOrderStatusPush(ctx context.Context, orderID string) error
	EnqueueEmail(ctx context.Context, to []string, subject, body string) error
}

// WooAPI is the part of the WooCommerce REST client the services use.
type WooAPI interface {
	ListOrders(ctx context.Context, q infra.WooOrderQuery) ([]infra.WooOrder, int, error)
	GetOrder(ctx context.Context, id int64) (*infra.WooOrder, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
	ListProducts(ctx context.Context, page, perPage int) ([]infra.WooProduct, int, error)
	UpdateProductStock(ctx context.Context, id int64, qty int) error
	Breaker() *infra.CircuitBreaker
}

// Locker provides a cross-instance mutex. infra.RedisLocker implements it.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

var (
	_ WooAPI = (*infra.WooClient)(nil)
	_ Locker = (*infra.RedisLocker)(nil)
)

// DashboardCacheKey holds the cached dashboard payload.
const DashboardCacheKey = "dashboard:stats"

// DashboardVersionKey counts invalidations. A fill only writes the cache
// when the version it started from is still current.
const DashboardVersionKey = "dashboard:stats:version"

// invalidateDashboard drops the cached dashboard. Best-effort: a nil client
// (tests) or a Redis failure never fails the write that triggered it.
func invalidateDashboard(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, DashboardVersionKey)
		pipe.Del(ctx, DashboardCacheKey)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}

// notFound names the missing entity. Other errors pass through unchanged.
func notFound(err error, what, id string) error {
	if errors.Is(err, ErrNotFound) && !strings.Contains(err.Error(), id) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return err
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
