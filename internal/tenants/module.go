package tenants

import (
	"marketing_dashboard_backend/internal/events"
	apphttp "marketing_dashboard_backend/internal/http"
	"marketing_dashboard_backend/internal/tenants/repository"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/telemetry"
	"marketing_dashboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the tenants bounded context implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, rdb *redis.Client, bus events.Bus, val *validator.Validator, cfg config.TenantConfig, log *logger.Logger, metrics *telemetry.Metrics) *Module {
	svc := NewService(
		repository.New(pool),
		NewRedisPreferences(rdb),
		NewSessions(),
		bus,
		cfg.GetTenantPriorityMatch(),
		log,
		metrics,
	)
	svc.RegisterHandlers(bus)

	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

func (m *Module) Name() string { return "tenants" }

// Service exposes the resolver for other modules.
func (m *Module) Service() *Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/tenants", m.handler.List)
	ctx.Protected.PUT("/tenants/active", m.handler.ChangeActive)

	ctx.Admin.GET("/users/:id/clients", m.handler.ListAssignments)
	ctx.Admin.PUT("/users/:id/clients", m.handler.ReplaceAssignments)
}
