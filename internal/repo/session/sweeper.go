package session

import (
	"context"
	"time"

	"github.com/axelsub/axelsub/internal/infra/logging"
)

// RunSweeper collects expired sessions from the store at the given interval
// until the context is cancelled. Run it in its own goroutine.
func RunSweeper(ctx context.Context, store Store, interval time.Duration, log logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := store.Sweep(ctx)
			if err != nil {
				log.ErrorContext(ctx, "session sweep failed", "error", err)

				continue
			}

			if swept > 0 {
				log.DebugContext(ctx, "session sweep", "collected", swept)
			}
		}
	}
}
