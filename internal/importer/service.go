package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailops/allocator/internal/catalog"
	"github.com/retailops/allocator/internal/config"
	"github.com/retailops/allocator/internal/engine"
)

// cleanupDelay is how long a finished import stays queryable before it is
// dropped from in-memory tracking.
const cleanupDelay = 5 * time.Minute

// Service provides the business logic for allocation imports.
type Service struct {
	pool  *pgxpool.Pool
	cache *catalog.Cache
	cfg   config.ImportConfig

	mu      sync.RWMutex
	imports map[string]*activeImport
}

type activeImport struct {
	ID         string
	SourceName string
	Cancel     context.CancelFunc
	Progress   Progress
	Result     *Result
	Done       chan struct{}
	Listeners  []chan Progress
	ListenerMu sync.Mutex
}

// NewService creates a new Service instance.
func NewService(pool *pgxpool.Pool, cache *catalog.Cache, cfg config.ImportConfig) *Service {
	return &Service{
		pool:    pool,
		cache:   cache,
		cfg:     cfg,
		imports: make(map[string]*activeImport),
	}
}

// SourceFile is one file feeding an import.
type SourceFile struct {
	Name string
	Data []byte
}

// options builds the engine options for a run, letting a caller-supplied
// mapping override detection.
func (s *Service) options(mappings map[string]string) engine.Options {
	return engine.Options{
		HeaderMappings:          mappings,
		DisableContentDetection: s.cfg.DisableContentDetection,
		SampleLimit:             s.cfg.SampleLimit,
	}
}

// StartImport begins an asynchronous import of a single file. It returns
// the import ID immediately; use SubscribeProgress for updates.
func (s *Service) StartImport(ctx context.Context, fileName string, data []byte, mappings map[string]string) (string, error) {
	return s.start(ctx, fileName, []SourceFile{{Name: fileName, Data: data}}, mappings)
}

// StartBatchImport begins an asynchronous import of several files as one
// run. Files are reconciled concurrently and their entries merged into a
// single sorted set.
func (s *Service) StartBatchImport(ctx context.Context, batchName string, files []SourceFile, mappings map[string]string) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("batch contains no files")
	}
	return s.start(ctx, batchName, files, mappings)
}

func (s *Service) start(ctx context.Context, sourceName string, files []SourceFile, mappings map[string]string) (string, error) {
	for _, f := range files {
		if int64(len(f.Data)) > s.cfg.MaxFileSize {
			return "", fmt.Errorf("file %s exceeds maximum size %d", f.Name, s.cfg.MaxFileSize)
		}
	}

	importID := uuid.New().String()
	importCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)

	imp := &activeImport{
		ID:         importID,
		SourceName: sourceName,
		Cancel:     cancel,
		Progress: Progress{
			ImportID:   importID,
			SourceName: sourceName,
			Phase:      PhaseStarting,
			FilesTotal: len(files),
		},
		Done:      make(chan struct{}),
		Listeners: make([]chan Progress, 0),
	}

	s.mu.Lock()
	s.imports[importID] = imp
	s.mu.Unlock()

	// Capture one snapshot so a concurrent catalog sync cannot change
	// matching behavior mid-run.
	snap := s.cache.Get()

	go s.process(importCtx, imp, files, snap, s.options(mappings))

	return importID, nil
}

// SubscribeProgress returns a channel that receives progress updates.
// The channel is closed when the import completes.
func (s *Service) SubscribeProgress(importID string) (<-chan Progress, error) {
	s.mu.RLock()
	imp, ok := s.imports[importID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("import not found: %s", importID)
	}

	ch := make(chan Progress, 10)

	imp.ListenerMu.Lock()
	imp.Listeners = append(imp.Listeners, ch)
	// Send current progress immediately
	select {
	case ch <- imp.Progress:
	default:
	}
	imp.ListenerMu.Unlock()

	return ch, nil
}

// CancelImport cancels an in-progress import.
func (s *Service) CancelImport(importID string) error {
	s.mu.RLock()
	imp, ok := s.imports[importID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("import not found: %s", importID)
	}

	imp.Cancel()
	return nil
}

// GetResult returns the result of a completed import. Blocks until the
// import completes if still in progress.
func (s *Service) GetResult(importID string) (*Result, error) {
	s.mu.RLock()
	imp, ok := s.imports[importID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("import not found: %s", importID)
	}

	<-imp.Done

	return imp.Result, nil
}

// GetProgress returns the current progress without blocking.
func (s *Service) GetProgress(importID string) (Progress, error) {
	s.mu.RLock()
	imp, ok := s.imports[importID]
	s.mu.RUnlock()

	if !ok {
		return Progress{}, fmt.Errorf("import not found: %s", importID)
	}

	imp.ListenerMu.Lock()
	progress := imp.Progress
	imp.ListenerMu.Unlock()

	return progress, nil
}

// cleanup removes the import from tracking after a delay.
func (s *Service) cleanup(importID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.imports, importID)
		s.mu.Unlock()
	})
}

// updateProgress mutates the import's progress and fans it out to all
// listeners. Slow listeners drop updates rather than block the import.
func (imp *activeImport) updateProgress(update func(*Progress)) {
	imp.ListenerMu.Lock()
	update(&imp.Progress)
	for _, ch := range imp.Listeners {
		select {
		case ch <- imp.Progress:
		default:
		}
	}
	imp.ListenerMu.Unlock()
}

// finish closes out the import and releases listeners.
func (imp *activeImport) finish(result *Result) {
	imp.Result = result

	imp.ListenerMu.Lock()
	for _, ch := range imp.Listeners {
		close(ch)
	}
	imp.Listeners = nil
	imp.ListenerMu.Unlock()

	close(imp.Done)
	imp.Cancel()
}
