package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailops/allocator/internal/database"
)

// Repository persists the catalogs in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Load reads both catalogs into a fresh snapshot.
func (r *Repository) Load(ctx context.Context) (*Snapshot, error) {
	q := database.New(r.pool)

	itemRows, err := q.ListCatalogItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog items: %w", err)
	}
	storeRows, err := q.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stores: %w", err)
	}

	snap := &Snapshot{LoadedAt: time.Now()}
	for _, row := range itemRows {
		snap.Items = append(snap.Items, itemFromRow(row))
	}
	for _, row := range storeRows {
		snap.Stores = append(snap.Stores, storeFromRow(row))
	}
	return snap, nil
}

// Replace swaps both catalogs wholesale inside one transaction. Row order
// is preserved so matcher first-wins semantics survive a round trip.
func (r *Repository) Replace(ctx context.Context, snap *Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning catalog replace: %w", err)
	}
	defer tx.Rollback(ctx)

	q := database.New(tx)
	if err := q.DeleteAllCatalogItems(ctx); err != nil {
		return fmt.Errorf("clearing catalog items: %w", err)
	}
	if err := q.DeleteAllStores(ctx); err != nil {
		return fmt.Errorf("clearing stores: %w", err)
	}

	itemRows := make([]database.CatalogItem, 0, len(snap.Items))
	for _, it := range snap.Items {
		itemRows = append(itemRows, itemToRow(it))
	}
	if _, err := q.InsertCatalogItems(ctx, itemRows); err != nil {
		return fmt.Errorf("inserting catalog items: %w", err)
	}

	storeRows := make([]database.Store, 0, len(snap.Stores))
	for _, s := range snap.Stores {
		storeRows = append(storeRows, storeToRow(s))
	}
	if _, err := q.InsertStores(ctx, storeRows); err != nil {
		return fmt.Errorf("inserting stores: %w", err)
	}

	return tx.Commit(ctx)
}
