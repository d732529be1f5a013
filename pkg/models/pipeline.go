package models

// PipelineStage is the coarse state of one pipeline run. Stages are
// forward-only once a run starts; Error is reachable from any
// non-terminal stage.
type PipelineStage string

const (
	StageIdle         PipelineStage = "idle"
	StageIngesting    PipelineStage = "ingesting"
	StageLinking      PipelineStage = "linking"
	StageCondensing   PipelineStage = "condensing"
	StageSynthesizing PipelineStage = "synthesizing"
	StageComplete     PipelineStage = "complete"
	StageError        PipelineStage = "error"
)

var stageRank = map[PipelineStage]int{
	StageIdle:         0,
	StageIngesting:    1,
	StageLinking:      2,
	StageCondensing:   3,
	StageSynthesizing: 4,
	StageComplete:     5,
	StageError:        5,
}

// Before reports whether s strictly precedes next in the run ordering.
// The two terminal stages rank equal so neither can replace the other.
func (s PipelineStage) Before(next PipelineStage) bool {
	return stageRank[s] < stageRank[next]
}

// Terminal reports whether the stage ends a run.
func (s PipelineStage) Terminal() bool {
	return s == StageComplete || s == StageError
}

// WorkerStatus is the per-worker state within a run, also forward-only.
type WorkerStatus string

const (
	WorkerPending   WorkerStatus = "pending"
	WorkerRunning   WorkerStatus = "running"
	WorkerCompleted WorkerStatus = "completed"
	WorkerFailed    WorkerStatus = "failed"
)

var workerRank = map[WorkerStatus]int{
	WorkerPending:   0,
	WorkerRunning:   1,
	WorkerCompleted: 2,
	WorkerFailed:    2,
}

// Before reports whether s strictly precedes next.
func (s WorkerStatus) Before(next WorkerStatus) bool {
	return workerRank[s] < workerRank[next]
}

// WorkerState tracks one ingestion worker within a run.
type WorkerState struct {
	Name      Source       `json:"name"`
	Status    WorkerStatus `json:"status"`
	ItemCount int          `json:"itemCount,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// PipelineStatus is the externally visible snapshot of one run.
type PipelineStatus struct {
	Stage   PipelineStage `json:"stage"`
	Workers []WorkerState `json:"workers"`
	Error   string        `json:"error,omitempty"`
}
