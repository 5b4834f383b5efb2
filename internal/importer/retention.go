package importer

// retention.go provides the background cleanup job for import history.
//
// Old finished imports and their allocations are removed once they pass the
// retention window. The job is long-running and context-aware for graceful
// shutdown; individual failures are logged, never fatal.

import (
	"context"
	"log/slog"
	"time"

	"github.com/retailops/allocator/internal/config"
	"github.com/retailops/allocator/internal/database"
)

// StartRetentionScheduler starts a background goroutine that periodically
// purges imports older than the retention window. It runs immediately on
// start, then every CheckInterval, and stops when the context is cancelled.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg config.RetentionConfig) {
	slog.Info("retention scheduler started",
		"retention_days", cfg.ImportRetentionDays,
		"check_interval", cfg.CheckInterval,
	)

	s.runRetentionJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, cfg)
		}
	}
}

// runRetentionJob performs one purge cycle.
func (s *Service) runRetentionJob(ctx context.Context, cfg config.RetentionConfig) {
	start := time.Now()
	cutoff := time.Now().AddDate(0, 0, -cfg.ImportRetentionDays)

	purged, err := database.New(s.pool).DeleteImportsBefore(ctx, cutoff)
	if err != nil {
		slog.Error("import purge failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("purged old imports",
			"imports_purged", purged,
			"cutoff", cutoff.Format(time.RFC3339),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
