package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/sitework/internal/app"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/outbox"
)

// every calls fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// cleanupLoop prunes published outbox rows past retention.
func cleanupLoop(ctx context.Context, c *app.Container, logger *slog.Logger) {
	retention := c.Config.OutboxRetentionDays
	every(ctx, c.Config.OutboxCleanupInterval, func() {
		deleted, err := c.OutboxRepo.DeleteOld(ctx, time.Now().AddDate(0, 0, -retention))
		switch {
		case err != nil:
			logger.Error("outbox cleanup failed", "error", err)
		case deleted > 0:
			logger.Info("outbox cleaned up", "deleted", deleted, "retention_days", retention)
		}
	})
}

// statsLoop logs a processor snapshot once per statsInterval.
func statsLoop(ctx context.Context, p *outbox.Processor, logger *slog.Logger) {
	every(ctx, statsInterval, func() {
		s := p.GetStats()
		attrs := []any{
			"published", s.PublishedCount,
			"failed", s.FailedCount,
			"dead", s.DeadCount,
			"lag_seconds", s.LagSeconds,
		}
		if s.LastError != "" {
			attrs = append(attrs, "last_error", s.LastError, "last_error_at", s.LastErrorAt)
		}
		logger.Info("outbox stats", attrs...)
	})
}
