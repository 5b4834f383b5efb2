package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/retailops/allocator/internal/database"
)

// Rollback deletes all allocations produced by a finished import and marks
// it rolled back.
func (s *Service) Rollback(ctx context.Context, importID string) (RollbackResult, error) {
	result := RollbackResult{ImportID: importID}

	id, err := uuid.Parse(importID)
	if err != nil {
		result.Error = fmt.Sprintf("invalid import ID: %v", err)
		return result, fmt.Errorf("invalid import ID: %w", err)
	}

	q := database.New(s.pool)

	imp, err := q.GetImport(ctx, id)
	if err != nil {
		result.Error = fmt.Sprintf("import not found: %v", err)
		return result, fmt.Errorf("get import: %w", err)
	}

	switch imp.Status {
	case "rolled_back":
		result.Error = "import already rolled back"
		return result, fmt.Errorf("import already rolled back")
	case "running", "pending":
		result.Error = "import still in progress"
		return result, fmt.Errorf("import still in progress")
	}

	rowsDeleted, err := q.DeleteAllocationsByImport(ctx, id)
	if err != nil {
		result.Error = fmt.Sprintf("delete failed: %v", err)
		return result, fmt.Errorf("delete allocations: %w", err)
	}

	if err := q.UpdateImportStatus(ctx, id, "rolled_back"); err != nil {
		// Rows are already gone; surface the status problem without undoing.
		result.Error = fmt.Sprintf("warning: rows deleted but status update failed: %v", err)
	}

	result.RowsDeleted = rowsDeleted
	result.Success = true

	s.audit(ctx, "import_rolled_back", id, fmt.Sprintf(`{"rows_deleted": %d}`, rowsDeleted))

	return result, nil
}
