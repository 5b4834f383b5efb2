package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/retailops/allocator/internal/catalog"
)

// Fetcher is the upstream side of a refresh. *Client satisfies it; tests
// substitute their own.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*catalog.Snapshot, error)
}

// Persister is the durable side of a refresh. *catalog.Repository satisfies
// it.
type Persister interface {
	Replace(ctx context.Context, snap *catalog.Snapshot) error
}

// Scheduler refreshes the catalogs on a fixed interval. A refresh fetches
// from upstream, persists, then swaps the in-memory snapshot; failures leave
// the previous snapshot serving.
type Scheduler struct {
	fetcher  Fetcher
	persist  Persister
	cache    *catalog.Cache
	interval time.Duration
}

func NewScheduler(fetcher Fetcher, persist Persister, cache *catalog.Cache, interval time.Duration) *Scheduler {
	return &Scheduler{
		fetcher:  fetcher,
		persist:  persist,
		cache:    cache,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, refreshing every interval. The first
// refresh happens immediately.
func (s *Scheduler) Run(ctx context.Context) {
	if err := s.RefreshOnce(ctx); err != nil {
		slog.Error("catalog sync failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshOnce(ctx); err != nil {
				slog.Error("catalog sync failed", "error", err)
			}
		}
	}
}

// RefreshOnce performs a single fetch-persist-swap cycle.
func (s *Scheduler) RefreshOnce(ctx context.Context) error {
	snap, err := s.fetcher.FetchSnapshot(ctx)
	if err != nil {
		return err
	}
	if s.persist != nil {
		if err := s.persist.Replace(ctx, snap); err != nil {
			return err
		}
	}
	s.cache.Set(snap)
	slog.Info("catalogs refreshed", "items", len(snap.Items), "stores", len(snap.Stores))
	return nil
}
