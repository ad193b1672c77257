// Package auth provides the authentication bounded context module.
package auth

import (
	"marketing_dashboard_backend/internal/auth/handler"
	"marketing_dashboard_backend/internal/auth/repository"
	"marketing_dashboard_backend/internal/auth/service"
	"marketing_dashboard_backend/internal/events"
	apphttp "marketing_dashboard_backend/internal/http"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthConfig is what the auth module reads from the application config.
type AuthConfig interface {
	config.AuthServiceConfig
	config.CookieConfig
}

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, cfg AuthConfig, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), cfg, eventBus, log)

	return &Module{
		handler: handler.New(svc, cfg, val),
		service: svc,
	}
}

func (m *Module) Name() string {
	return "auth"
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/auth/me", m.handler.GetMe)

	ctx.Admin.GET("/users", m.handler.ListUsers)
	ctx.Admin.POST("/users", m.handler.CreateUser)
}

var _ apphttp.Module = (*Module)(nil)
