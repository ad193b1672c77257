package reports

import (
	"context"

	"marketing_dashboard_backend/internal/adapters/storage"
	apphttp "marketing_dashboard_backend/internal/http"
	"marketing_dashboard_backend/internal/reports/repository"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportsConfig is what the reports module reads from the application config.
type ReportsConfig interface {
	config.MinIOConfig
	config.ReportingConfig
}

// Module is the reports bounded context implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule makes sure the reports bucket exists before any export is served.
func NewModule(ctx context.Context, pool *pgxpool.Pool, store storage.StorageService, dashboard SnapshotLoader, active ActiveClient, normalizer *window.Normalizer, cfg ReportsConfig, log *logger.Logger) (*Module, error) {
	bucket := cfg.GetMinioBucketReports()
	if err := store.EnsureBucketExists(ctx, bucket); err != nil {
		return nil, err
	}

	svc := NewService(dashboard, active, store, repository.New(pool), bucket, log)
	return &Module{
		handler: NewHandler(svc, normalizer, cfg.GetMetricsDefaultWindowMonths()),
	}, nil
}

func (m *Module) Name() string { return "reports" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/reports/campaigns", m.handler.ExportCampaigns)
	ctx.Protected.GET("/reports", m.handler.History)
}
