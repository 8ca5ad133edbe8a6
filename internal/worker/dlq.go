package worker

// Jobs that exhaust their attempts land in dlq:{queue}. Admins inspect the
// backlog and replay dead letters once the cause (usually the shop being
// down or a product not yet mapped) is fixed.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with enough context to replay it.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339
	Attempts      int             `json:"attempts"`
}

// SendToDLQ pushes a failed job to the dead letter queue.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      job.Attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		// The job is lost at this point; the log line is all that is left of it.
		log.Error().Err(err).Str("queue", queue).RawJSON("payload", job.Payload).Msg("dlq: push failed")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job dead-lettered")
}

// DLQLength returns the number of entries in a DLQ.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// Inspector reports queue backlogs and replays dead letters.
type Inspector struct {
	rdb *redis.Client
}

func NewInspector(rdb *redis.Client) *Inspector {
	return &Inspector{rdb: rdb}
}

// ResolveQueue accepts "woo_stock" or "jobs:woo_stock".
func ResolveQueue(name string) (string, error) {
	if !strings.HasPrefix(name, "jobs:") {
		name = "jobs:" + name
	}
	for _, q := range Queues {
		if q == name {
			return q, nil
		}
	}
	return "", fmt.Errorf("queue %q: %w", name, service.ErrInvalidInput)
}

func (i *Inspector) Stats(ctx context.Context) ([]dto.QueueStats, error) {
	pipe := i.rdb.Pipeline()
	pending := make([]*redis.IntCmd, len(Queues))
	dead := make([]*redis.IntCmd, len(Queues))
	for n, q := range Queues {
		pending[n] = pipe.LLen(ctx, q)
		dead[n] = pipe.LLen(ctx, DLQPrefix+q)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	out := make([]dto.QueueStats, len(Queues))
	for n, q := range Queues {
		out[n] = dto.QueueStats{Queue: q, Pending: pending[n].Val(), Dead: dead[n].Val()}
	}
	return out, nil
}

// Replay moves up to limit dead letters, oldest first, back onto their queue
// with a fresh attempt budget. Entries that no longer decode are dropped.
func (i *Inspector) Replay(ctx context.Context, name string, limit int) (int, error) {
	queue, err := ResolveQueue(name)
	if err != nil {
		return 0, err
	}
	if limit <= 0 {
		limit = 100
	}
	replayed := 0
	for replayed < limit {
		raw, err := i.rdb.RPop(ctx, DLQPrefix+queue).Bytes()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return replayed, fmt.Errorf("replay %s: %w", queue, err)
		}
		job, ok := jobFromDLQ(raw)
		if !ok {
			log.Warn().Str("queue", queue).Bytes("entry", raw).Msg("dlq: dropping undecodable entry")
			continue
		}
		encoded, err := json.Marshal(job)
		if err != nil {
			return replayed, err
		}
		if err := i.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			// Put it back so nothing is lost.
			_ = i.rdb.RPush(ctx, DLQPrefix+queue, raw).Err()
			return replayed, fmt.Errorf("replay %s: %w", queue, err)
		}
		replayed++
	}
	if replayed > 0 {
		log.Info().Str("queue", queue).Int("replayed", replayed).Msg("dlq: replayed")
	}
	return replayed, nil
}

func jobFromDLQ(raw []byte) (Job, bool) {
	var e DLQEntry
	if err := json.Unmarshal(raw, &e); err != nil || e.JobType == "" || len(e.Payload) == 0 {
		return Job{}, false
	}
	return Job{Type: e.JobType, Payload: e.Payload}, true
}
