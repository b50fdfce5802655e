package session

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper runs a background goroutine that periodically drops expired
// sessions until ctx is canceled.
func StartSweeper(ctx context.Context, store Store, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval)

		for {
			select {
			case now := <-ticker.C:
				sweep(ctx, store, now)
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(ctx context.Context, store Store, now time.Time) {
	swept, err := store.Sweep(ctx, now)
	if err != nil {
		slog.Error("Session sweeper failed", "error", err)
		return
	}
	if swept > 0 {
		slog.Info("Session sweeper dropped expired sessions", "count", swept)
	}
}
