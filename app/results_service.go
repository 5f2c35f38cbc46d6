package app

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"caseview/adapters/demo"
	"caseview/adapters/resultstore"
	"caseview/domain/results"
	"caseview/internal"
	"caseview/internal/errors"
)

// Snapshot is everything loaded from one connection event. A snapshot is
// immutable; reconnecting swaps the whole thing at once so renders never
// observe a half-updated state.
type Snapshot struct {
	Connection results.ConnectionState
	Table      *results.CaseTable
	Artifacts  results.ArtifactAvailability
	Metrics    []results.MetricsRow
	RunConfig  *results.RunConfig
	RunNotes   []byte
}

// IsDemo reports whether the snapshot holds synthetic data
func (s *Snapshot) IsDemo() bool {
	return s != nil && s.Connection.Status == results.StatusDemo
}

// HasData reports whether a case table is loaded
func (s *Snapshot) HasData() bool {
	return s != nil && s.Table != nil && !s.Table.IsEmpty()
}

// ResultsService owns the connection lifecycle: validate a folder, load it,
// and expose the current snapshot to renders. Loads for the same root are
// deduplicated through singleflight so simultaneous renders trigger one
// filesystem pass.
type ResultsService struct {
	mu       sync.RWMutex
	current  *Snapshot
	loads    singleflight.Group
	demoSize int
	logger   *internal.Logger
}

// NewResultsService creates a disconnected service
func NewResultsService(demoSize int) *ResultsService {
	return &ResultsService{
		current: &Snapshot{
			Connection: results.ConnectionState{Status: results.StatusDisconnected},
		},
		demoSize: demoSize,
		logger:   internal.DefaultLogger,
	}
}

// Snapshot returns the current snapshot. Never nil.
func (s *ResultsService) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Connect validates and loads the given results root, then atomically
// replaces the current snapshot. On failure the previous snapshot is kept.
func (s *ResultsService) Connect(root string) error {
	snap, err, _ := s.loads.Do(root, func() (interface{}, error) {
		return s.loadSnapshot(root)
	})
	if err != nil {
		return err
	}
	s.swap(snap.(*Snapshot))
	return nil
}

func (s *ResultsService) loadSnapshot(root string) (*Snapshot, error) {
	store := resultstore.NewStore(root)
	if err := store.Validate(); err != nil {
		return nil, err
	}
	table, err := store.Load()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Connection: results.NewConnectionState(root, results.StatusConnected),
		Table:      table,
		Artifacts:  store.LocateArtifacts(),
	}
	// Optional artifacts never fail a connect
	snap.Metrics, _ = store.ReadMetricsSummary()
	snap.RunConfig, _ = store.ReadRunConfig()
	snap.RunNotes, _ = store.ReadRunNotes()

	s.logger.Info("connected results folder %q: %d cases, %d images",
		snap.Connection.FolderName, table.Len(), snap.Artifacts.CaseImageCount)
	return snap, nil
}

// ConnectDemo replaces the snapshot with a synthetic table
func (s *ResultsService) ConnectDemo() {
	gen := demo.NewGenerator()
	table := gen.Generate(s.demoSize)

	avail := results.ArtifactAvailability{
		Artifacts: map[string]results.ArtifactStatus{
			resultstore.ArtifactIndex:   {Present: true, Label: resultstore.IndexFileCSV},
			resultstore.ArtifactMapping: {Present: true, Label: resultstore.MappingFile},
		},
	}
	s.swap(&Snapshot{
		Connection: results.ConnectionState{FolderName: "DEMO", Status: results.StatusDemo},
		Table:      table,
		Artifacts:  avail,
	})
	s.logger.Info("demo mode enabled with %d synthetic cases", table.Len())
}

// Disconnect clears the snapshot
func (s *ResultsService) Disconnect() {
	s.swap(&Snapshot{
		Connection: results.ConnectionState{Status: results.StatusDisconnected},
	})
}

func (s *ResultsService) swap(snap *Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
}

// CaseImage serves the explainability image for one case of the currently
// connected folder. Demo and disconnected snapshots have no images.
func (s *ResultsService) CaseImage(caseID string) ([]byte, error) {
	snap := s.Snapshot()
	if snap.Connection.Status != results.StatusConnected {
		return nil, errors.NotFound("explainability image")
	}
	return resultstore.NewStore(snap.Connection.Root()).CaseImage(caseID)
}

// PlotImage serves a fixed patient-level plot of the connected folder
func (s *ResultsService) PlotImage(key string) ([]byte, error) {
	snap := s.Snapshot()
	if snap.Connection.Status != results.StatusConnected {
		return nil, errors.NotFound("plot image")
	}
	return resultstore.NewStore(snap.Connection.Root()).PlotImage(key)
}
