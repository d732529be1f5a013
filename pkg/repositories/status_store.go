package repositories

import (
	"sync"

	"github.com/haashim-ali/boggart/pkg/models"
)

// PipelineStatusStore tracks one live pipeline status per user. Stage
// and worker transitions are forward-only; attempts to move backward
// are ignored. Create overwrites any prior terminal status.
type PipelineStatusStore interface {
	// Create installs a fresh status record with stage=ingesting and all
	// workers pending.
	Create(userID string, workers []models.Source)

	// Get returns a snapshot of the current status, or a default idle
	// status with all workers pending when the user has no run yet.
	// Never blocks, never fails.
	Get(userID string) models.PipelineStatus

	// AdvanceStage moves the run to a later stage. Regressions and
	// transitions out of a terminal stage are ignored.
	AdvanceStage(userID string, stage models.PipelineStage)

	// FailRun moves the run to the error stage with a message. A run
	// already complete stays complete.
	FailRun(userID string, message string)

	// MarkWorker updates one worker's state, forward-only.
	MarkWorker(userID string, name models.Source, status models.WorkerStatus, itemCount int, errMsg string)

	// Delete removes the user's status record.
	Delete(userID string)
}

type memoryStatusStore struct {
	mu      sync.RWMutex
	states  map[string]*models.PipelineStatus
	workers []models.Source // fixed worker roster, in launch order
}

// NewMemoryStatusStore creates a status store for the given worker
// roster. The roster determines the worker list in default snapshots.
func NewMemoryStatusStore(workers []models.Source) PipelineStatusStore {
	roster := make([]models.Source, len(workers))
	copy(roster, workers)
	return &memoryStatusStore{
		states:  make(map[string]*models.PipelineStatus),
		workers: roster,
	}
}

var _ PipelineStatusStore = (*memoryStatusStore)(nil)

func pendingWorkers(names []models.Source) []models.WorkerState {
	out := make([]models.WorkerState, len(names))
	for i, name := range names {
		out[i] = models.WorkerState{Name: name, Status: models.WorkerPending}
	}
	return out
}

func (s *memoryStatusStore) Create(userID string, workers []models.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = &models.PipelineStatus{
		Stage:   models.StageIngesting,
		Workers: pendingWorkers(workers),
	}
}

func (s *memoryStatusStore) Get(userID string) models.PipelineStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return models.PipelineStatus{
			Stage:   models.StageIdle,
			Workers: pendingWorkers(s.workers),
		}
	}

	snapshot := models.PipelineStatus{
		Stage:   state.Stage,
		Error:   state.Error,
		Workers: make([]models.WorkerState, len(state.Workers)),
	}
	copy(snapshot.Workers, state.Workers)
	return snapshot
}

func (s *memoryStatusStore) AdvanceStage(userID string, stage models.PipelineStage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[userID]
	if !ok || !state.Stage.Before(stage) {
		return
	}
	state.Stage = stage
}

func (s *memoryStatusStore) FailRun(userID string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[userID]
	if !ok || state.Stage.Terminal() {
		return
	}
	state.Stage = models.StageError
	state.Error = message
}

func (s *memoryStatusStore) MarkWorker(userID string, name models.Source, status models.WorkerStatus, itemCount int, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[userID]
	if !ok {
		return
	}
	for i := range state.Workers {
		w := &state.Workers[i]
		if w.Name != name {
			continue
		}
		if !w.Status.Before(status) {
			return
		}
		w.Status = status
		w.ItemCount = itemCount
		w.Error = errMsg
		return
	}
}

func (s *memoryStatusStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
