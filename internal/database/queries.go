package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const listCatalogItems = `
SELECT number, description, skus, position, updated_at
FROM catalog_items
ORDER BY position, number
`

func (q *Queries) ListCatalogItems(ctx context.Context) ([]CatalogItem, error) {
	rows, err := q.db.Query(ctx, listCatalogItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CatalogItem
	for rows.Next() {
		var it CatalogItem
		if err := rows.Scan(&it.Number, &it.Description, &it.SKUs, &it.Position, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const listStores = `
SELECT code, name, rank, position, updated_at
FROM stores
ORDER BY position, code
`

func (q *Queries) ListStores(ctx context.Context) ([]Store, error) {
	rows, err := q.db.Query(ctx, listStores)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.Code, &s.Name, &s.Rank, &s.Position, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (q *Queries) DeleteAllCatalogItems(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `DELETE FROM catalog_items`)
	return err
}

func (q *Queries) DeleteAllStores(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `DELETE FROM stores`)
	return err
}

// InsertCatalogItems bulk-loads items, preserving slice order in position.
func (q *Queries) InsertCatalogItems(ctx context.Context, items []CatalogItem) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"catalog_items"},
		[]string{"number", "description", "skus", "position"},
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			return []any{items[i].Number, items[i].Description, items[i].SKUs, int32(i)}, nil
		}),
	)
}

// InsertStores bulk-loads stores, preserving slice order in position.
func (q *Queries) InsertStores(ctx context.Context, stores []Store) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"stores"},
		[]string{"code", "name", "rank", "position"},
		pgx.CopyFromSlice(len(stores), func(i int) ([]any, error) {
			return []any{stores[i].Code, stores[i].Name, stores[i].Rank, int32(i)}, nil
		}),
	)
}

const createImport = `
INSERT INTO imports (id, source_name, status)
VALUES ($1, $2, 'running')
RETURNING id, source_name, status, started_at, finished_at,
          rows_read, header_echoes, empty_rows, skipped_rows, entry_count, error
`

func (q *Queries) CreateImport(ctx context.Context, id uuid.UUID, sourceName string) (Import, error) {
	return scanImport(q.db.QueryRow(ctx, createImport, id, sourceName))
}

const finishImport = `
UPDATE imports
SET status       = $2,
    finished_at  = now(),
    rows_read    = $3,
    header_echoes = $4,
    empty_rows   = $5,
    skipped_rows = $6,
    entry_count  = $7,
    error        = $8
WHERE id = $1
`

type FinishImportParams struct {
	ID           uuid.UUID
	Status       string
	RowsRead     int32
	HeaderEchoes int32
	EmptyRows    int32
	SkippedRows  int32
	EntryCount   int32
	Error        pgtype.Text
}

func (q *Queries) FinishImport(ctx context.Context, p FinishImportParams) error {
	_, err := q.db.Exec(ctx, finishImport,
		p.ID, p.Status, p.RowsRead, p.HeaderEchoes, p.EmptyRows, p.SkippedRows, p.EntryCount, p.Error)
	return err
}

const updateImportStatus = `
UPDATE imports SET status = $2 WHERE id = $1
`

func (q *Queries) UpdateImportStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := q.db.Exec(ctx, updateImportStatus, id, status)
	return err
}

const getImport = `
SELECT id, source_name, status, started_at, finished_at,
       rows_read, header_echoes, empty_rows, skipped_rows, entry_count, error
FROM imports
WHERE id = $1
`

func (q *Queries) GetImport(ctx context.Context, id uuid.UUID) (Import, error) {
	return scanImport(q.db.QueryRow(ctx, getImport, id))
}

const listImports = `
SELECT id, source_name, status, started_at, finished_at,
       rows_read, header_echoes, empty_rows, skipped_rows, entry_count, error
FROM imports
ORDER BY started_at DESC
LIMIT $1
`

func (q *Queries) ListImports(ctx context.Context, limit int32) ([]Import, error) {
	rows, err := q.db.Query(ctx, listImports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

const deleteImportsBefore = `
DELETE FROM imports
WHERE started_at < $1
  AND status IN ('completed', 'failed', 'cancelled', 'rolled_back')
`

// DeleteImportsBefore removes finished imports older than the cutoff. Their
// allocations go with them via ON DELETE CASCADE.
func (q *Queries) DeleteImportsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteImportsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InsertAllocations bulk-loads reconciled entries for one import.
func (q *Queries) InsertAllocations(ctx context.Context, allocs []Allocation) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"allocations"},
		[]string{"import_id", "store_code", "store_name", "item_number", "sku", "description", "quantity", "rank", "position"},
		pgx.CopyFromSlice(len(allocs), func(i int) ([]any, error) {
			a := allocs[i]
			return []any{a.ImportID, a.StoreCode, a.StoreName, a.ItemNumber, a.SKU, a.Description, a.Quantity, a.Rank, a.Position}, nil
		}),
	)
}

const listAllocationsByImport = `
SELECT id, import_id, store_code, store_name, item_number, sku, description, quantity, rank, position
FROM allocations
WHERE import_id = $1
ORDER BY position
`

func (q *Queries) ListAllocationsByImport(ctx context.Context, importID uuid.UUID) ([]Allocation, error) {
	rows, err := q.db.Query(ctx, listAllocationsByImport, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocs []Allocation
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.ID, &a.ImportID, &a.StoreCode, &a.StoreName, &a.ItemNumber,
			&a.SKU, &a.Description, &a.Quantity, &a.Rank, &a.Position); err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

func (q *Queries) DeleteAllocationsByImport(ctx context.Context, importID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM allocations WHERE import_id = $1`, importID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const insertAuditEntry = `
INSERT INTO audit_log (action, import_id, detail)
VALUES ($1, $2, $3)
`

func (q *Queries) InsertAuditEntry(ctx context.Context, action string, importID pgtype.UUID, detail []byte) error {
	if detail == nil {
		detail = []byte(`{}`)
	}
	_, err := q.db.Exec(ctx, insertAuditEntry, action, importID, detail)
	return err
}

const listAuditEntries = `
SELECT id, occurred_at, action, import_id, detail
FROM audit_log
ORDER BY occurred_at DESC
LIMIT $1
`

func (q *Queries) ListAuditEntries(ctx context.Context, limit int32) ([]AuditEntry, error) {
	rows, err := q.db.Query(ctx, listAuditEntries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.Action, &e.ImportID, &e.Detail); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanImport(row pgx.Row) (Import, error) {
	var imp Import
	err := row.Scan(&imp.ID, &imp.SourceName, &imp.Status, &imp.StartedAt, &imp.FinishedAt,
		&imp.RowsRead, &imp.HeaderEchoes, &imp.EmptyRows, &imp.SkippedRows, &imp.EntryCount, &imp.Error)
	if err != nil {
		return Import{}, fmt.Errorf("scanning import: %w", err)
	}
	return imp, nil
}
