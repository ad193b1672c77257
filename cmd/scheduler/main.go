package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	authrepo "marketing_dashboard_backend/internal/auth/repository"
	"marketing_dashboard_backend/internal/email"
	"marketing_dashboard_backend/internal/events"
	"marketing_dashboard_backend/internal/notification"
	"marketing_dashboard_backend/internal/records"
	recordsrepo "marketing_dashboard_backend/internal/records/repository"
	"marketing_dashboard_backend/internal/scheduler"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	flushErrors, err := errreport.Init(cfg)
	if err != nil {
		log.Error("failed to initialize error reporting", "error", err)
	} else {
		defer flushErrors()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	rdb, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to configure redis", "error", err)
		panic("failed to configure redis: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()

	eventBus := events.NewInMemoryBus(log)
	metrics := telemetry.New()

	sender := email.NewSender(cfg, log)
	notificationModule := notification.New(sender, cfg.GetAlertRecipients(), log)
	notificationModule.RegisterHandlers(eventBus)

	// Worker-side wiring: the sweep only needs the client list, no HTTP handlers.
	tenantSvc := tenants.NewModule(pool, rdb, eventBus, validator.New(), cfg, log, metrics).Service()
	fetcher := records.NewFetcher(recordsrepo.New(pool), cfg, log, metrics)
	normalizer := window.NewNormalizer(cfg.GetReportingLocation())
	auditor := scheduler.NewQualityAuditor(
		fetcher,
		normalizer,
		cfg.GetMetricsDefaultWindowMonths(),
		cfg.GetQualityAlertThreshold(),
		eventBus,
		metrics,
		log,
	)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	go periodic.Run(ctx)

	cleanupInterval := getDurationEnv("REFRESH_TOKEN_CLEANUP_INTERVAL", time.Hour)
	retention := time.Duration(getPositiveIntEnv("REVOKED_TOKEN_RETENTION_DAYS", 7)) * 24 * time.Hour
	tokenCleanup := scheduler.NewRefreshTokenCleanup(authrepo.New(pool), log, cleanupInterval, retention)
	go tokenCleanup.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, tenantSvc, client, auditor, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
