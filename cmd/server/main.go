package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/config"
	"github.com/brehash/kscinventory-sub002/internal/handler"
	"github.com/brehash/kscinventory-sub002/internal/infra"
	"github.com/brehash/kscinventory-sub002/internal/middleware"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"
	"github.com/brehash/kscinventory-sub002/internal/router"
	"github.com/brehash/kscinventory-sub002/internal/service"
	"github.com/brehash/kscinventory-sub002/internal/worker"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// @title                       KSC Inventory API
// @version                     1.0
// @description                 Inventory, orders and WooCommerce sync for the KSC store.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Firebase ID token, as "Bearer <token>".
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.SetupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fb, err := infra.NewFirebase(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise firebase")
	}
	defer fb.Close()

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// ── Repositories ─────────────────────────────────────────────────────────
	fs := fb.Firestore
	productRepo := repository.NewProductRepository(fs)
	catalogRepo := repository.NewCatalogRepository(fs)
	orderRepo := repository.NewOrderRepository(fs)
	historyRepo := repository.NewPriceHistoryRepository(fs)
	movementRepo := repository.NewStockMovementRepository(fs)
	activityRepo := repository.NewActivityRepository(fs)
	userRepo := repository.NewUserRepository(fs)
	syncStateRepo := repository.NewSyncStateRepository(fs)

	// ── Infrastructure ───────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)
	mailer := infra.NewMailer(cfg)

	var (
		woo        service.WooAPI
		wooBreaker *infra.CircuitBreaker
	)
	if cfg.WooEnabled() {
		wooBreaker = infra.NewCircuitBreaker(infra.DefaultCBConfig("woocommerce"))
		woo = infra.NewWooClient(cfg.WooURL, cfg.WooConsumerKey, cfg.WooConsumerSecret, wooBreaker)
	} else {
		log.Warn().Msg("WooCommerce credentials not set; sync and stock push disabled")
	}
	pushToWoo := cfg.WooEnabled() && cfg.WooPushStock

	// ── Services ─────────────────────────────────────────────────────────────
	activitySvc := service.NewActivityService(activityRepo)
	services := router.Services{
		Activity: activitySvc,
		Catalog:  service.NewCatalogService(catalogRepo, productRepo, activitySvc),
		Products: service.NewProductService(service.ProductServiceDeps{
			Products: productRepo, Catalog: catalogRepo, History: historyRepo, Movements: movementRepo,
			Activity: activitySvc, Dispatcher: dispatcher, Redis: rdb, PushToWoo: pushToWoo,
		}),
		Orders: service.NewOrderService(service.OrderServiceDeps{
			Orders: orderRepo, Products: productRepo, Activity: activitySvc,
			Dispatcher: dispatcher, Redis: rdb, PushToWoo: pushToWoo,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceDeps{
			Products: productRepo, Orders: orderRepo, Catalog: catalogRepo, Activity: activitySvc,
			Redis: rdb, TTL: cfg.DashboardCacheTTL(), Location: cfg.Location(),
		}),
		Sync: service.NewSyncService(service.SyncServiceDeps{
			Woo: woo, Locker: infra.NewRedisLocker(rdb), Orders: orderRepo, Products: productRepo,
			State: syncStateRepo, Activity: activitySvc, Redis: rdb, WebhookSecret: cfg.WooWebhookSecret,
		}),
		Reports: service.NewReportService(service.ReportServiceDeps{
			Products: productRepo, Catalog: catalogRepo, History: historyRepo, Activity: activitySvc,
			Dispatcher: dispatcher, Redis: rdb, AlertEmail: cfg.AlertEmail, PushToWoo: pushToWoo,
		}),
		Users: service.NewUserService(userRepo, fb.Auth, activitySvc),
	}

	// ── Background work ──────────────────────────────────────────────────────
	// Handlers are wired here so the pool sees every dependency it needs.
	wooWorker := worker.NewWooWorker(services.Sync)
	pool := worker.NewPool(rdb, cfg.WorkerPoolSize, map[string]worker.Handler{
		worker.QueueWooStock:       wooWorker.HandleStock,
		worker.QueueWooOrderStatus: wooWorker.HandleOrderStatus,
		worker.QueueEmail:          worker.NewEmailWorker(mailer).Handle,
	})
	pool.Start(ctx)

	schedCfg := worker.SchedulerConfig{
		Location:               cfg.Location(),
		LowStockDigestSchedule: cfg.LowStockDigestSchedule,
		Sync:                   services.Sync,
		Reports:                services.Reports,
	}
	if cfg.WooEnabled() {
		schedCfg.WooSyncSchedule = cfg.WooSyncSchedule
	}
	scheduler, err := worker.NewScheduler(ctx, schedCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid schedule")
	}
	scheduler.Start()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	go limiter.RunPurge(ctx)

	r := router.New(router.Deps{
		Config:      cfg,
		Verifier:    fb.Auth,
		Services:    services,
		WooBreaker:  wooBreaker,
		RateLimiter: limiter,
		Jobs:        worker.NewInspector(rdb),
		Health: map[string]handler.HealthCheck{
			"firestore": func(ctx context.Context) error {
				_, err := fs.Collection(model.CollectionSettings).Doc(model.SyncStateDocID).Get(ctx)
				if status.Code(err) == codes.NotFound {
					return nil
				}
				return err
			},
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Int("port", cfg.Port).Bool("woocommerce", cfg.WooEnabled()).Msg("inventory backend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	scheduler.Stop(shutdownCtx)
	// Cancelling stops the workers; a job cut short is put back on its queue.
	cancel()
	pool.Wait()
	log.Info().Msg("server exited")
}
