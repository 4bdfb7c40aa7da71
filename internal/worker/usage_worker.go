package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/service"
)

// UsageSyncer runs one usage sync pass. *service.UsageService satisfies it.
type UsageSyncer interface {
	Sync(ctx context.Context, actor service.Actor) (*service.UsageReport, error)
}

// StartUsageSync runs syncer every interval until ctx is cancelled. The
// returned channel is closed once the loop has exited. A non-positive
// interval disables the loop.
func StartUsageSync(ctx context.Context, syncer UsageSyncer, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if syncer == nil || interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, interval)
				if _, err := syncer.Sync(runCtx, service.Actor{}); err != nil {
					logger.Warn("scheduled usage sync failed", zap.Error(err))
				}
				cancel()
			}
		}
	}()
	logger.Info("usage sync scheduled", zap.Duration("interval", interval))
	return done
}
