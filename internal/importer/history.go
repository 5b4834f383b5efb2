package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/retailops/allocator/internal/database"
)

// History returns the most recent imports, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]database.Import, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return database.New(s.pool).ListImports(ctx, int32(limit))
}

// GetImportRecord returns the persisted record for one import.
func (s *Service) GetImportRecord(ctx context.Context, importID string) (database.Import, error) {
	id, err := uuid.Parse(importID)
	if err != nil {
		return database.Import{}, fmt.Errorf("invalid import ID: %w", err)
	}
	return database.New(s.pool).GetImport(ctx, id)
}

// Allocations returns the persisted entries for one import in output order.
func (s *Service) Allocations(ctx context.Context, importID string) ([]database.Allocation, error) {
	id, err := uuid.Parse(importID)
	if err != nil {
		return nil, fmt.Errorf("invalid import ID: %w", err)
	}
	return database.New(s.pool).ListAllocationsByImport(ctx, id)
}

// AuditLog returns recent audit entries, newest first.
func (s *Service) AuditLog(ctx context.Context, limit int) ([]database.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return database.New(s.pool).ListAuditEntries(ctx, int32(limit))
}
