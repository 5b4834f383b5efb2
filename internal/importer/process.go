package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"github.com/retailops/allocator/internal/catalog"
	"github.com/retailops/allocator/internal/database"
	"github.com/retailops/allocator/internal/engine"
	"github.com/retailops/allocator/internal/logging"
)

// process runs an import to completion: reconcile every file, merge, persist,
// record the outcome. It always finishes the activeImport, success or not.
func (s *Service) process(ctx context.Context, imp *activeImport, files []SourceFile, snap *catalog.Snapshot, opts engine.Options) {
	start := time.Now()
	logger := logging.WithFields(ctx, "import_id", imp.ID, "source", imp.SourceName)

	importID, err := uuid.Parse(imp.ID)
	if err != nil {
		s.fail(ctx, imp, start, fmt.Errorf("parsing import id: %w", err))
		return
	}

	q := database.New(s.pool)
	if _, err := q.CreateImport(ctx, importID, imp.SourceName); err != nil {
		s.fail(ctx, imp, start, fmt.Errorf("recording import: %w", err))
		return
	}

	imp.updateProgress(func(p *Progress) { p.Phase = PhaseReconciling })

	merged, err := s.reconcileAll(ctx, imp, files, snap, opts)
	if err != nil {
		s.failPersisted(ctx, imp, importID, start, err)
		return
	}

	imp.updateProgress(func(p *Progress) {
		p.Phase = PhaseInserting
		p.RowsRead = merged.RowsRead
		p.Entries = len(merged.Entries)
		p.Skipped = merged.SkippedRows
	})

	if err := s.persist(ctx, importID, merged); err != nil {
		s.failPersisted(ctx, imp, importID, start, err)
		return
	}

	result := &Result{
		ImportID:     imp.ID,
		SourceName:   imp.SourceName,
		Roles:        merged.Roles,
		RowsRead:     merged.RowsRead,
		HeaderEchoes: merged.HeaderEchoes,
		EmptyRows:    merged.EmptyRows,
		SkippedRows:  merged.SkippedRows,
		Entries:      len(merged.Entries),
		Duration:     time.Since(start),
	}

	imp.updateProgress(func(p *Progress) { p.Phase = PhaseComplete })
	imp.finish(result)
	s.cleanup(imp.ID, cleanupDelay)

	logger.Info("import completed",
		"entries", result.Entries,
		"rows_read", result.RowsRead,
		"skipped", result.SkippedRows,
		"header_echoes", result.HeaderEchoes,
		"duration", result.Duration)
}

// reconcileAll runs the engine over every file, bounded by MaxConcurrent,
// and merges the per-file results into one sorted set.
func (s *Service) reconcileAll(ctx context.Context, imp *activeImport, files []SourceFile, snap *catalog.Snapshot, opts engine.Options) (*engine.Result, error) {
	results := make([]*engine.Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := engine.ReconcileFile(f.Name, f.Data, snap.Items, snap.Stores, opts)
			if err != nil {
				return err
			}
			results[i] = res
			imp.updateProgress(func(p *Progress) {
				p.FilesDone++
				p.RowsRead += res.RowsRead
				p.Entries += len(res.Entries)
				p.Skipped += res.SkippedRows
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(results) == 1 {
		return results[0], nil
	}

	merged := &engine.Result{Roles: results[0].Roles}
	for _, res := range results {
		merged.Entries = append(merged.Entries, res.Entries...)
		merged.RowsRead += res.RowsRead
		merged.HeaderEchoes += res.HeaderEchoes
		merged.EmptyRows += res.EmptyRows
		merged.SkippedRows += res.SkippedRows
	}
	sort.SliceStable(merged.Entries, func(i, j int) bool {
		a, b := merged.Entries[i], merged.Entries[j]
		if a.StoreID != b.StoreID {
			return a.StoreID < b.StoreID
		}
		return a.ItemNumber < b.ItemNumber
	})
	return merged, nil
}

// persist writes the reconciled entries and the import summary in one
// transaction, then records an audit entry.
func (s *Service) persist(ctx context.Context, importID uuid.UUID, res *engine.Result) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning persist: %w", err)
	}
	defer tx.Rollback(ctx)

	q := database.New(tx)

	if err := insertEntries(ctx, q, importID, res.Entries, s.cfg.BatchSize); err != nil {
		return fmt.Errorf("inserting allocations: %w", err)
	}

	if err := q.FinishImport(ctx, database.FinishImportParams{
		ID:           importID,
		Status:       "completed",
		RowsRead:     int32(res.RowsRead),
		HeaderEchoes: int32(res.HeaderEchoes),
		EmptyRows:    int32(res.EmptyRows),
		SkippedRows:  int32(res.SkippedRows),
		EntryCount:   int32(len(res.Entries)),
	}); err != nil {
		return fmt.Errorf("finishing import: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}

	s.audit(ctx, "import_completed", importID,
		fmt.Sprintf(`{"entries": %d, "rows_read": %d}`, len(res.Entries), res.RowsRead))
	return nil
}

// insertEntries bulk-loads the entries in batches of batchSize, keeping the
// position sequence continuous across batches so output order survives.
func insertEntries(ctx context.Context, q *database.Queries, importID uuid.UUID, entries []engine.Entry, batchSize int) error {
	if batchSize <= 0 {
		batchSize = len(entries)
	}
	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}

		allocs := make([]database.Allocation, 0, end-start)
		for i := start; i < end; i++ {
			e := entries[i]
			allocs = append(allocs, database.Allocation{
				ImportID:    importID,
				StoreCode:   e.StoreID,
				StoreName:   e.StoreName,
				ItemNumber:  e.ItemNumber,
				SKU:         e.SKU,
				Description: e.Description,
				Quantity:    int32(e.Quantity),
				Rank:        string(e.Rank),
				Position:    int32(i),
			})
		}
		if _, err := q.InsertAllocations(ctx, allocs); err != nil {
			return err
		}
	}
	return nil
}

// fail finishes an import that never reached the database.
func (s *Service) fail(ctx context.Context, imp *activeImport, start time.Time, err error) {
	phase := PhaseFailed
	if errors.Is(err, context.Canceled) {
		phase = PhaseCancelled
	}
	logging.FromContext(ctx).Error("import failed", "import_id", imp.ID, "error", err)

	imp.updateProgress(func(p *Progress) {
		p.Phase = phase
		p.Error = err.Error()
	})
	imp.finish(&Result{
		ImportID:   imp.ID,
		SourceName: imp.SourceName,
		Duration:   time.Since(start),
		Error:      err.Error(),
	})
	s.cleanup(imp.ID, cleanupDelay)
}

// failPersisted additionally marks the imports row failed or cancelled.
func (s *Service) failPersisted(ctx context.Context, imp *activeImport, importID uuid.UUID, start time.Time, err error) {
	status := "failed"
	if errors.Is(err, context.Canceled) {
		status = "cancelled"
	}

	// Best effort: the context that failed the import may itself be dead.
	finishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	finishErr := database.New(s.pool).FinishImport(finishCtx, database.FinishImportParams{
		ID:     importID,
		Status: status,
		Error:  pgtype.Text{String: err.Error(), Valid: true},
	})
	if finishErr != nil {
		logging.FromContext(ctx).Error("recording import failure", "import_id", imp.ID, "error", finishErr)
	}

	s.fail(ctx, imp, start, err)
}

// audit records an audit entry, logging rather than failing on error.
func (s *Service) audit(ctx context.Context, action string, importID uuid.UUID, detail string) {
	var id pgtype.UUID
	copy(id.Bytes[:], importID[:])
	id.Valid = true

	if err := database.New(s.pool).InsertAuditEntry(ctx, action, id, []byte(detail)); err != nil {
		logging.FromContext(ctx).Warn("audit entry failed", "action", action, "error", err)
	}
}
