package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops expired sessions.
type Sweeper interface {
	Sweep() int
}

// RunSessionSweeper calls Sweep every interval until ctx is done. A non-positive interval
// returns immediately.
func RunSessionSweeper(ctx context.Context, sessions Sweeper, interval time.Duration, logger *zap.Logger) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug("expired sessions swept", zap.Int("count", n))
			}
		}
	}
}
