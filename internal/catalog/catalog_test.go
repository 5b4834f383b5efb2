package catalog

import (
	"testing"

	"github.com/retailops/allocator/internal/database"
	"github.com/retailops/allocator/internal/engine"
)

func TestCacheZeroValue(t *testing.T) {
	var c Cache
	snap := c.Get()
	if snap == nil {
		t.Fatal("Get() on zero cache returned nil")
	}
	if len(snap.Items) != 0 || len(snap.Stores) != 0 {
		t.Errorf("zero cache snapshot not empty: %+v", snap)
	}
}

func TestCacheSwap(t *testing.T) {
	var c Cache
	first := &Snapshot{Items: []engine.CatalogItem{{Number: "A100"}}}
	c.Set(first)
	if got := c.Get(); got != first {
		t.Errorf("Get() = %p, want %p", got, first)
	}

	second := &Snapshot{Stores: []engine.Store{{Code: "001"}}}
	c.Set(second)
	if got := c.Get(); got != second {
		t.Errorf("Get() after swap = %p, want %p", got, second)
	}
	// The old snapshot must stay intact for imports still holding it.
	if len(first.Items) != 1 || first.Items[0].Number != "A100" {
		t.Errorf("previous snapshot mutated: %+v", first)
	}
}

func TestRowConversionRoundTrip(t *testing.T) {
	it := engine.CatalogItem{Number: "A100", Description: "Blue Widget", SKUs: []string{"SKU1", "SKU9"}}
	if got := itemFromRow(itemToRow(it)); got.Number != it.Number ||
		got.Description != it.Description || len(got.SKUs) != 2 {
		t.Errorf("item round trip = %+v, want %+v", got, it)
	}

	s := engine.Store{Code: "001", Name: "Downtown", Rank: engine.RankA}
	if got := storeFromRow(storeToRow(s)); got != s {
		t.Errorf("store round trip = %+v, want %+v", got, s)
	}
}

func TestStoreFromRowUnknownRankDefaults(t *testing.T) {
	row := database.Store{Code: "001", Name: "Downtown", Rank: "platinum"}
	if got := storeFromRow(row); got.Rank != engine.RankD {
		t.Errorf("Rank = %q, want %q", got.Rank, engine.RankD)
	}
}
