package importer

import (
	"context"
	"fmt"

	"github.com/retailops/allocator/internal/catalog"
	"github.com/retailops/allocator/internal/engine"
)

// PreviewSampleSize caps how many entries a preview returns.
const PreviewSampleSize = 25

// AnalyzeFile runs the reconciliation pipeline over a file without writing
// anything, returning detection results and a bounded entry sample. The
// catalogs used are the same snapshot a real import would capture.
func (s *Service) AnalyzeFile(ctx context.Context, fileName string, data []byte, mappings map[string]string) (*Preview, error) {
	if int64(len(data)) > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("file %s exceeds maximum size %d", fileName, s.cfg.MaxFileSize)
	}

	snap := s.cache.Get()
	res, tbl, err := reconcileForPreview(fileName, data, snap, s.options(mappings))
	if err != nil {
		return nil, err
	}

	sample := res.Entries
	if len(sample) > PreviewSampleSize {
		sample = sample[:PreviewSampleSize]
	}

	return &Preview{
		SourceName:   fileName,
		Headers:      tbl.Headers,
		Roles:        res.Roles,
		RowsRead:     res.RowsRead,
		HeaderEchoes: res.HeaderEchoes,
		EmptyRows:    res.EmptyRows,
		SkippedRows:  res.SkippedRows,
		EntryCount:   len(res.Entries),
		Sample:       sample,
	}, nil
}

func reconcileForPreview(name string, data []byte, snap *catalog.Snapshot, opts engine.Options) (*engine.Result, *engine.Table, error) {
	tbl, err := engine.LoadTable(name, data)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return engine.Reconcile(tbl, snap.Items, snap.Stores, opts), tbl, nil
}
