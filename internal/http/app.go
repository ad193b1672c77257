package http

import (
	"context"
	"net/http"

	"marketing_dashboard_backend/internal/events"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the dependencies assembled by cmd/api.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   []HealthChecker
	EventBus events.Bus
	// Metrics serves the Prometheus exposition; nil disables /metrics.
	Metrics http.Handler
	Modules []Module
}
