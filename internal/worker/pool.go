package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxAttempts is how many times a job runs before it is dead-lettered.
const MaxAttempts = 5

// Handler processes one job payload. Returning an error retries the job;
// wrap it with Permanent to dead-letter it immediately.
type Handler func(ctx context.Context, payload json.RawMessage) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Pool runs a fixed number of goroutines consuming the job queues.
type Pool struct {
	rdb      *redis.Client
	size     int
	handlers map[string]Handler
	wg       sync.WaitGroup
}

// NewPool builds a pool; handlers are keyed by queue name.
func NewPool(rdb *redis.Client, size int, handlers map[string]Handler) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{rdb: rdb, size: size, handlers: handlers}
}

// Start launches the workers. They exit when ctx is cancelled; Wait blocks
// until they have.
func (p *Pool) Start(ctx context.Context) {
	queues := make([]string, 0, len(p.handlers))
	for _, q := range Queues {
		if _, ok := p.handlers[q]; ok {
			queues = append(queues, q)
		}
	}
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id, queues)
		}(i)
	}
	log.Info().Int("workers", p.size).Strs("queues", queues).Msg("worker pool started")
}

func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
		}
		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		o := p.process(ctx, result[0], result[1])
		// The job is off the queue now, so it is put back or dead-lettered
		// even when shutdown has cancelled ctx.
		p.settle(context.WithoutCancel(ctx), result[0], o)
	}
}

type outcome struct {
	job     Job
	retry   bool
	dead    bool
	reason  string
	encoded []byte
}

// process runs the handler for one raw job and decides what happens next.
func (p *Pool) process(ctx context.Context, queue, raw string) outcome {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return outcome{dead: true, reason: fmt.Sprintf("malformed job: %v", err), job: Job{Payload: json.RawMessage(raw)}}
	}
	h, ok := p.handlers[queue]
	if !ok {
		return outcome{job: job, dead: true, reason: "no handler for queue"}
	}

	err := h(ctx, job.Payload)
	var perm permanentError
	if err != nil && ctx.Err() != nil && !errors.As(err, &perm) {
		// Interrupted by shutdown: requeue without spending an attempt.
		encoded, mErr := json.Marshal(job)
		if mErr == nil {
			log.Info().Str("queue", queue).Str("type", job.Type).Msg("job interrupted by shutdown, requeueing")
			return outcome{job: job, retry: true, reason: err.Error(), encoded: encoded}
		}
	}
	job.Attempts++
	if err == nil {
		return outcome{job: job}
	}

	if errors.As(err, &perm) || job.Attempts >= MaxAttempts {
		return outcome{job: job, dead: true, reason: err.Error()}
	}
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		return outcome{job: job, dead: true, reason: mErr.Error()}
	}
	log.Warn().Err(err).Str("queue", queue).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	return outcome{job: job, retry: true, reason: err.Error(), encoded: encoded}
}

func (p *Pool) settle(ctx context.Context, queue string, o outcome) {
	switch {
	case o.retry:
		// LPUSH puts it behind everything already waiting.
		if err := p.rdb.LPush(ctx, queue, o.encoded).Err(); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("requeue failed")
			SendToDLQ(ctx, p.rdb, queue, o.job, "requeue failed: "+err.Error())
		}
	case o.dead:
		SendToDLQ(ctx, p.rdb, queue, o.job, o.reason)
	}
}
