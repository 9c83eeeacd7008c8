package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/solosprint/sprint-engine/internal/storage"
)

// Cleaner periodically removes duplicate incomplete attempts. Starting a
// project already discards the prior attempt for the same triple, so the
// worker only mops up rows left behind by crashes or races.
type Cleaner struct {
	repo     storage.Repository
	interval time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(repo storage.Repository, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &Cleaner{
		repo:     repo,
		interval: interval,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// cleanup removes all but the most recent incomplete attempt per triple
func (c *Cleaner) cleanup(ctx context.Context) {
	slog.Debug("running cleanup cycle")

	removed, err := c.repo.CleanupDuplicateSessions(ctx)
	if err != nil {
		slog.Error("failed to clean up duplicate sessions", "error", err)
		return
	}

	if removed == 0 {
		slog.Debug("no duplicate sessions found")
		return
	}

	slog.Info("duplicate sessions removed", "count", removed)
}
