// Package errreport forwards security-class and unexpected errors to Sentry.
// Without a DSN every call is a no-op.
package errreport

import (
	"context"
	"fmt"
	"time"

	"marketing_dashboard_backend/platform/config"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Init configures the global Sentry client. The returned flush func must be
// called before exit.
func Init(cfg config.SentryConfig) (func(), error) {
	dsn := cfg.GetSentryDSN()
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      cfg.GetEnv(),
		AttachStacktrace: true,
	}); err != nil {
		return func() {}, fmt.Errorf("sentry init: %w", err)
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// Capture reports err with the given tags attached to its scope.
func Capture(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}

// Recovery reports panics to Sentry and answers 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetTag("route", c.FullPath())
				hub.Recover(rec)
				c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
