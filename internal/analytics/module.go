package analytics

import (
	"context"
	"time"

	"marketing_dashboard_backend/internal/events"
	apphttp "marketing_dashboard_backend/internal/http"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/telemetry"
)

// Module is the analytics bounded context implementing http.Module.
type Module struct {
	handler   *Handler
	dashboard *Dashboard
	cache     *QueryCache
}

const warmTimeout = 30 * time.Second

// NewModule builds the dashboard. Pipeline writes invalidate the written
// client's cached snapshots through the event bus, and a client switch warms
// the new client's default window.
func NewModule(source RecordSource, active ActiveTenants, normalizer *window.Normalizer, bus events.Bus, cfg config.ReportingConfig, log *logger.Logger, metrics *telemetry.Metrics) *Module {
	cache := NewQueryCache(cfg.GetMetricsCacheTTL())
	dashboard := NewDashboard(source, active, normalizer, cache, log, metrics)

	bus.Subscribe(events.NameLeadStageChanged, events.HandlerFunc(func(_ context.Context, event events.Event) error {
		if e, ok := event.(events.LeadStageChanged); ok {
			cache.Invalidate(e.ClientName)
		}
		return nil
	}))

	bus.Subscribe(events.NameActiveClientChanged, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.ActiveClientChanged)
		if !ok {
			return nil
		}
		ctx, cancel := context.WithTimeout(ctx, warmTimeout)
		defer cancel()
		r := normalizer.Trailing(time.Now(), cfg.GetMetricsDefaultWindowMonths())
		return dashboard.Warm(ctx, e.UserID, e.Current, r)
	}))

	return &Module{
		handler:   NewHandler(dashboard, normalizer, cfg.GetMetricsDefaultWindowMonths(), cfg.GetPipelineDefaultWindowMonths()),
		dashboard: dashboard,
		cache:     cache,
	}
}

func (m *Module) Name() string { return "analytics" }

func (m *Module) Dashboard() *Dashboard { return m.dashboard }

// Cache is registered with the tenant resolver so switches drop it.
func (m *Module) Cache() *QueryCache { return m.cache }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/metrics", m.handler.GetMetrics)
	ctx.Protected.GET("/metrics/campaigns", m.handler.GetCampaigns)
	ctx.Protected.GET("/leads", m.handler.ListContacts)
}
