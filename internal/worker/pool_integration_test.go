//go:build integration

package worker

// Runs the pool against a real Redis.
// Run with: go test -tags integration ./internal/worker/... -v

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/infra"

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

func TestPoolDeliversAndDeadLetters(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stockRuns, emailRuns atomic.Int32
	pool := NewPool(rdb, 2, map[string]Handler{
		QueueWooStock: func(context.Context, json.RawMessage) error {
			stockRuns.Add(1)
			return errors.New("shop unreachable")
		},
		QueueEmail: func(context.Context, json.RawMessage) error {
			emailRuns.Add(1)
			return nil
		},
	})

	d := NewDispatcher(rdb)
	require.NoError(t, d.EnqueueEmail(ctx, []string{"ops@example.com"}, "s", "b"))
	require.NoError(t, d.EnqueueStockPush(ctx, "p1"))

	pool.Start(ctx)

	require.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueWooStock)
		return err == nil && n == 1
	}, 30*time.Second, 100*time.Millisecond)

	assert.EqualValues(t, 1, emailRuns.Load())
	assert.EqualValues(t, MaxAttempts, stockRuns.Load())

	raw, err := rdb.LIndex(ctx, DLQPrefix+QueueWooStock, 0).Result()
	require.NoError(t, err)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, "woo_stock", entry.JobType)
	assert.Equal(t, MaxAttempts, entry.Attempts)
	assert.Equal(t, "shop unreachable", entry.Reason)
	assert.JSONEq(t, `{"product_id":"p1"}`, string(entry.Payload))

	cancel()
	pool.Wait()

	insp := NewInspector(rdb)
	stats, err := insp.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, len(Queues))
	assert.Equal(t, QueueWooStock, stats[0].Queue)
	assert.EqualValues(t, 1, stats[0].Dead)

	n, err := insp.Replay(context.Background(), "woo_stock", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	raw, err = rdb.RPop(context.Background(), QueueWooStock).Result()
	require.NoError(t, err)
	var replayed Job
	require.NoError(t, json.Unmarshal([]byte(raw), &replayed))
	assert.Zero(t, replayed.Attempts)
	assert.JSONEq(t, `{"product_id":"p1"}`, string(replayed.Payload))

	dead, err := DLQLength(context.Background(), rdb, QueueWooStock)
	require.NoError(t, err)
	assert.Zero(t, dead)
}

func TestPoolShutdownRequeuesInFlightJob(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	var once sync.Once
	pool := NewPool(rdb, 1, map[string]Handler{
		QueueWooStock: func(ctx context.Context, _ json.RawMessage) error {
			once.Do(func() { close(started) })
			<-ctx.Done()
			return ctx.Err()
		},
	})
	require.NoError(t, NewDispatcher(rdb).EnqueueStockPush(ctx, "p1"))
	pool.Start(ctx)

	select {
	case <-started:
	case <-time.After(30 * time.Second):
		t.Fatal("job never started")
	}
	cancel()
	pool.Wait()

	bg := context.Background()
	raw, err := rdb.RPop(bg, QueueWooStock).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Zero(t, job.Attempts)
	assert.JSONEq(t, `{"product_id":"p1"}`, string(job.Payload))

	dead, err := DLQLength(bg, rdb, QueueWooStock)
	require.NoError(t, err)
	assert.Zero(t, dead)
}

func TestRedisLockerExcludes(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	l := infra.NewRedisLocker(rdb)

	tok, ok, err := l.Acquire(ctx, "lock:test", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, "lock:test", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A stale token does not release a lock it no longer owns.
	require.NoError(t, l.Release(ctx, "lock:test", "someone-else"))
	_, ok, _ = l.Acquire(ctx, "lock:test", time.Minute)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "lock:test", tok))
	_, ok, err = l.Acquire(ctx, "lock:test", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
