package service

import (
	"context"
	"time"
)

// StartRefresher rebuilds the snapshot every interval until ctx is cancelled.
// Failed rebuilds are logged and retried on the next tick.
func (s *Service) StartRefresher(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Rebuild already logs and counts failures.
			_, _ = s.Rebuild(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
