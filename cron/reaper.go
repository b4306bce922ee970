package cron

import (
	"context"
	"time"

	"platepick/services/feed"

	"go.uber.org/zap"
)

// StartSessionReaper periodically evicts feed sessions that have been idle
// longer than maxIdle. Run it in its own goroutine; it exits when ctx ends.
func StartSessionReaper(ctx context.Context, svc feed.Service, maxIdle, interval time.Duration) {
	logger := zap.L()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Session reaper shutdown signal received")
			return
		case <-ticker.C:
			if n := svc.ReapIdle(maxIdle); n > 0 {
				logger.Info("Session reaper evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
