package scheduler

import (
	"context"
	"time"

	"marketing_dashboard_backend/platform/logger"
)

const (
	defaultRefreshTokenCleanupInterval = time.Hour
	defaultRevokedTokenRetention       = 7 * 24 * time.Hour
)

// TokenPruner deletes refresh tokens that expired or were revoked before a
// cutoff.
type TokenPruner interface {
	DeleteStaleRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

// RefreshTokenCleanup periodically removes refresh tokens nobody can use.
type RefreshTokenCleanup struct {
	repo      TokenPruner
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewRefreshTokenCleanup(repo TokenPruner, log *logger.Logger, interval, retention time.Duration) *RefreshTokenCleanup {
	if interval <= 0 {
		interval = defaultRefreshTokenCleanupInterval
	}
	if retention <= 0 {
		retention = defaultRevokedTokenRetention
	}

	return &RefreshTokenCleanup{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

func (c *RefreshTokenCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *RefreshTokenCleanup) cleanup(ctx context.Context) {
	deleted, err := c.repo.DeleteStaleRefreshTokens(ctx, c.now().Add(-c.retention))
	if err != nil {
		c.log.Warn("refresh token cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("refresh token cleanup deleted stale tokens", "deleted", deleted)
	}
}
