package pipeline

import (
	"marketing_dashboard_backend/internal/events"
	apphttp "marketing_dashboard_backend/internal/http"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/validator"
)

// Module is the pipeline bounded context implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

func NewModule(store LeadStore, active ActiveTenant, normalizer *window.Normalizer, bus events.Bus, val *validator.Validator, cfg config.ReportingConfig, log *logger.Logger) *Module {
	svc := NewService(store, bus, log)
	return &Module{
		handler: NewHandler(svc, active, normalizer, val, cfg.GetPipelineDefaultWindowMonths()),
		service: svc,
	}
}

func (m *Module) Name() string { return "pipeline" }

func (m *Module) Service() *Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/pipeline", m.handler.GetBoard)
	ctx.Protected.POST("/pipeline/:id/move", m.handler.Move)
	ctx.Protected.POST("/pipeline/:id/close", m.handler.Close)
}
