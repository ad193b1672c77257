// Package http wires dashboard modules onto the gin engine.
package http

import (
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is the public /api/v1 group.
	V1 *gin.RouterGroup
	// Protected requires a valid access token.
	Protected *gin.RouterGroup
	// Admin additionally requires the admin role.
	Admin           *gin.RouterGroup
	Config          config.JWTConfig
	AuthMiddleware  gin.HandlerFunc
	AuthRateLimiter *httpkit.AuthRateLimiter
}
