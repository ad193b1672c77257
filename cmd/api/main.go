package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketing_dashboard_backend/internal/adapters/storage"
	"marketing_dashboard_backend/internal/analytics"
	"marketing_dashboard_backend/internal/auth"
	"marketing_dashboard_backend/internal/events"
	apphttp "marketing_dashboard_backend/internal/http"
	"marketing_dashboard_backend/internal/http/router"
	"marketing_dashboard_backend/internal/pipeline"
	"marketing_dashboard_backend/internal/records"
	recordsrepo "marketing_dashboard_backend/internal/records/repository"
	"marketing_dashboard_backend/internal/reports"
	"marketing_dashboard_backend/internal/tenants"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/cache"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/db"
	"marketing_dashboard_backend/platform/errreport"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/retry"
	"marketing_dashboard_backend/platform/telemetry"
	"marketing_dashboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	flushErrors, err := errreport.Init(cfg)
	if err != nil {
		log.Error("failed to initialize error reporting", "error", err)
	} else {
		defer flushErrors()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func(ctx context.Context) error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func(ctx context.Context) error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	rdb, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to configure redis", "error", err)
		panic("failed to configure redis: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}

	metrics := telemetry.New()

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()
	normalizer := window.NewNormalizer(cfg.GetReportingLocation())

	// Every ad_spend and leads access goes through this fetcher.
	fetcher := records.NewFetcher(recordsrepo.New(pool), cfg, log, metrics)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, eventBus, val, log)

	tenantsModule := tenants.NewModule(pool, rdb, eventBus, val, cfg, log, metrics)
	tenantSvc := tenantsModule.Service()

	analyticsModule := analytics.NewModule(fetcher, tenantSvc, normalizer, eventBus, cfg, log, metrics)
	// A switch must drop the previous client's cached snapshots before it commits.
	tenantSvc.OnInvalidate(analyticsModule.Cache())

	pipelineModule := pipeline.NewModule(fetcher, tenantSvc, normalizer, eventBus, val, cfg, log)

	modules := []apphttp.Module{
		authModule,
		tenantsModule,
		analyticsModule,
		pipelineModule,
	}

	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}

		var reportsModule *reports.Module
		if err := withRetry(ctx, log, "ensure reports bucket", 5, 2*time.Second, func(ctx context.Context) error {
			m, err := reports.NewModule(ctx, pool, storageSvc, analyticsModule.Dashboard(), tenantSvc, normalizer, cfg, log)
			if err != nil {
				return err
			}
			reportsModule = m
			return nil
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketReports())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		modules = append(modules, reportsModule)
		log.Info("storage service initialized", "reportsBucket", cfg.GetMinioBucketReports())
	} else {
		log.Warn("MINIO_ENDPOINT not set, campaign report export disabled")
	}

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   []apphttp.HealthChecker{pool, cache.Pinger{Client: rdb}},
		EventBus: eventBus,
		Metrics:  metrics.Handler(),
		Modules:  modules,
	}

	engine := router.New(app, metrics.GinMiddleware())
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func(context.Context) error) error {
	return retry.Do(ctx, name, retry.Policy{
		Attempts:  attempts,
		BaseDelay: baseDelay,
		OnRetry: func(attempt int, err error) {
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		},
	}, fn)
}
