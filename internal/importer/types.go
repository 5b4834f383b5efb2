// Package importer runs allocation file imports end to end: it feeds file
// bytes through the reconciliation engine, persists the resulting entries,
// tracks progress for live subscribers and keeps the import history. This
// package has no HTTP dependencies and can be driven by any frontend.
package importer

import (
	"time"

	"github.com/retailops/allocator/internal/engine"
)

// Phase indicates the current stage of import processing.
type Phase string

const (
	PhaseStarting    Phase = "starting"
	PhaseReconciling Phase = "reconciling"
	PhaseInserting   Phase = "inserting"
	PhaseComplete    Phase = "complete"
	PhaseFailed      Phase = "failed"
	PhaseCancelled   Phase = "cancelled"
)

// Progress represents the current state of an import operation.
type Progress struct {
	ImportID   string `json:"importId"`
	SourceName string `json:"sourceName"`
	Phase      Phase  `json:"phase"`
	FilesTotal int    `json:"filesTotal"`
	FilesDone  int    `json:"filesDone"`
	RowsRead   int    `json:"rowsRead"`
	Entries    int    `json:"entries"`
	Skipped    int    `json:"skipped"`
	Error      string `json:"error,omitempty"` // Non-empty if Phase is PhaseFailed
}

// Percent returns the progress as a percentage (0-100), file-granular.
func (p Progress) Percent() int {
	switch p.Phase {
	case PhaseComplete:
		return 100
	case PhaseStarting:
		return 0
	}
	if p.FilesTotal > 0 {
		return (p.FilesDone * 100) / p.FilesTotal
	}
	return 0
}

// Result contains the final outcome of an import operation.
type Result struct {
	ImportID     string             `json:"importId"`
	SourceName   string             `json:"sourceName"`
	Roles        engine.ColumnRoles `json:"roles"`
	RowsRead     int                `json:"rowsRead"`
	HeaderEchoes int                `json:"headerEchoes"`
	EmptyRows    int                `json:"emptyRows"`
	SkippedRows  int                `json:"skippedRows"`
	Entries      int                `json:"entries"`
	Duration     time.Duration      `json:"durationNs"`
	Error        string             `json:"error,omitempty"` // Non-empty if the import failed
}

// Preview is the outcome of a dry-run analysis: detection results and a
// bounded sample of the entries a real import would produce. Nothing is
// persisted.
type Preview struct {
	SourceName   string             `json:"sourceName"`
	Headers      []string           `json:"headers"`
	Roles        engine.ColumnRoles `json:"roles"`
	RowsRead     int                `json:"rowsRead"`
	HeaderEchoes int                `json:"headerEchoes"`
	EmptyRows    int                `json:"emptyRows"`
	SkippedRows  int                `json:"skippedRows"`
	EntryCount   int                `json:"entryCount"`
	Sample       []engine.Entry     `json:"sample"`
}

// RollbackResult contains the result of a rollback operation.
type RollbackResult struct {
	ImportID    string `json:"importId"`
	RowsDeleted int64  `json:"rowsDeleted"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}
