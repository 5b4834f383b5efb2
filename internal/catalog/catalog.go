// Package catalog maintains the reference catalogs (items and stores) the
// reconciliation engine matches against. The database holds the durable
// copy; an in-memory snapshot serves reads so imports never query mid-run.
package catalog

import (
	"sync"
	"time"

	"github.com/retailops/allocator/internal/database"
	"github.com/retailops/allocator/internal/engine"
)

// Snapshot is an immutable view of both catalogs. Imports capture one
// snapshot at start so a concurrent sync cannot change matching behavior
// mid-file.
type Snapshot struct {
	Items    []engine.CatalogItem
	Stores   []engine.Store
	LoadedAt time.Time
}

// Cache holds the current snapshot behind a read lock. The zero value is
// usable and serves an empty snapshot.
type Cache struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// Get returns the current snapshot, never nil.
func (c *Cache) Get() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return &Snapshot{}
	}
	return c.snap
}

// Set swaps in a new snapshot.
func (c *Cache) Set(snap *Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// itemFromRow converts a database row to the engine's shape.
func itemFromRow(row database.CatalogItem) engine.CatalogItem {
	return engine.CatalogItem{
		Number:      row.Number,
		Description: row.Description,
		SKUs:        row.SKUs,
	}
}

func storeFromRow(row database.Store) engine.Store {
	return engine.Store{
		Code: row.Code,
		Name: row.Name,
		Rank: engine.ParseRank(row.Rank),
	}
}

func itemToRow(it engine.CatalogItem) database.CatalogItem {
	return database.CatalogItem{
		Number:      it.Number,
		Description: it.Description,
		SKUs:        it.SKUs,
	}
}

func storeToRow(s engine.Store) database.Store {
	return database.Store{
		Code: s.Code,
		Name: s.Name,
		Rank: string(s.Rank),
	}
}
