package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// jobTimeout bounds a single scheduled run.
const jobTimeout = 10 * time.Minute

type SchedulerConfig struct {
	Location *time.Location
	// WooSyncSchedule is empty when WooCommerce is disabled.
	WooSyncSchedule        string
	LowStockDigestSchedule string
	Sync                   service.SyncService
	Reports                service.ReportService
}

// Scheduler runs the periodic order pull and the low-stock digest.
type Scheduler struct {
	cron    *cron.Cron
	sync    service.SyncService
	reports service.ReportService
	ctx     context.Context
}

// NewScheduler registers the jobs. An invalid cron expression is an error.
func NewScheduler(ctx context.Context, cfg SchedulerConfig) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sync:    cfg.Sync,
		reports: cfg.Reports,
		ctx:     ctx,
	}
	if cfg.WooSyncSchedule != "" && cfg.Sync != nil {
		if _, err := s.cron.AddFunc(cfg.WooSyncSchedule, s.syncOrders); err != nil {
			return nil, fmt.Errorf("woo sync schedule %q: %w", cfg.WooSyncSchedule, err)
		}
	}
	if cfg.LowStockDigestSchedule != "" && cfg.Reports != nil {
		if _, err := s.cron.AddFunc(cfg.LowStockDigestSchedule, s.lowStockDigest); err != nil {
			return nil, fmt.Errorf("low stock digest schedule %q: %w", cfg.LowStockDigestSchedule, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler: started")
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	log.Info().Msg("scheduler: stopped")
}

func (s *Scheduler) syncOrders() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	res, err := s.sync.SyncOrders(ctx, model.SystemActor)
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		log.Debug().Msg("scheduler: order sync already running, skipped")
	case err != nil:
		log.Error().Err(err).Msg("scheduler: order sync failed")
	default:
		log.Info().
			Int("new", res.New).
			Int("updated", res.Updated).
			Int("skipped", res.Skipped).
			Msg("scheduler: order sync finished")
	}
}

func (s *Scheduler) lowStockDigest() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	n, err := s.reports.LowStockDigest(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: low stock digest failed")
		return
	}
	log.Info().Int("products", n).Msg("scheduler: low stock digest done")
}
