package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/apperrors"
	"github.com/haashim-ali/boggart/pkg/ingest"
	"github.com/haashim-ali/boggart/pkg/logging"
	"github.com/haashim-ali/boggart/pkg/models"
	"github.com/haashim-ali/boggart/pkg/repositories"
)

// Coordinator drives the per-user pipeline state machine: it launches
// the ingestion workers concurrently, waits for all of them to settle,
// then links, condenses, synthesizes, and persists. At most one run per
// user may be in flight; concurrent starts are rejected.
type Coordinator struct {
	registry  *ingest.Registry
	condenser *Condenser
	synth     *Synthesizer
	users     repositories.UserStore
	status    repositories.PipelineStatusStore
	logger    *zap.Logger

	mu      sync.Mutex
	running map[string]struct{}
}

// NewCoordinator creates a pipeline coordinator.
func NewCoordinator(
	registry *ingest.Registry,
	condenser *Condenser,
	synth *Synthesizer,
	users repositories.UserStore,
	status repositories.PipelineStatusStore,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		registry:  registry,
		condenser: condenser,
		synth:     synth,
		users:     users,
		status:    status,
		logger:    logger.Named("pipeline"),
		running:   make(map[string]struct{}),
	}
}

// Start acquires the user's run slot, installs a fresh status record
// with all workers pending, and kicks off the run in the background.
// Returns apperrors.ErrPipelineRunning when a run is already in flight
// for the user.
func (c *Coordinator) Start(ctx context.Context, userID string, cred ingest.Credential) error {
	c.mu.Lock()
	if _, ok := c.running[userID]; ok {
		c.mu.Unlock()
		return apperrors.ErrPipelineRunning
	}
	c.running[userID] = struct{}{}
	c.mu.Unlock()

	c.status.Create(userID, c.registry.Sources())

	c.logger.Info("pipeline started", zap.String("user_id", userID))

	// The run outlives the originating request.
	go c.run(context.WithoutCancel(ctx), userID, cred)

	return nil
}

// Status returns the current snapshot, or a default idle status for a
// user with no run. Never blocks.
func (c *Coordinator) Status(userID string) models.PipelineStatus {
	return c.status.Get(userID)
}

func (c *Coordinator) run(ctx context.Context, userID string, cred ingest.Credential) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("pipeline panicked",
				zap.String("user_id", userID),
				zap.Any("panic", r))
			c.status.FailRun(userID, fmt.Sprintf("pipeline panicked: %v", r))
		}
		c.mu.Lock()
		delete(c.running, userID)
		c.mu.Unlock()
	}()

	results := c.ingestAll(ctx, userID, cred)

	c.status.AdvanceStage(userID, models.StageLinking)
	graph := Link(results)

	c.logger.Info("entities linked",
		zap.String("user_id", userID),
		zap.Int("people", len(graph.People)),
		zap.Int("moments", len(graph.Moments)),
		zap.Int("artifacts", len(graph.Artifacts)))

	c.status.AdvanceStage(userID, models.StageCondensing)
	digest, err := c.condenser.Condense(ctx, graph)
	if err != nil {
		// Non-fatal: synthesis falls back to raw graph samples.
		c.logger.Warn("condensation failed, synthesizing from raw samples",
			zap.String("user_id", userID),
			zap.Error(err))
		digest = ""
	}

	c.status.AdvanceStage(userID, models.StageSynthesizing)
	profile, err := c.synth.Synthesize(ctx, userID, graph, digest)
	if err != nil {
		c.logger.Error("synthesis failed",
			zap.String("user_id", userID),
			zap.Error(err))
		c.status.FailRun(userID, err.Error())
		return
	}

	c.users.Upsert(userID, profile, &graph)
	c.status.AdvanceStage(userID, models.StageComplete)

	c.logger.Info("pipeline complete", zap.String("user_id", userID))
}

// ingestAll launches every registered worker concurrently and waits for
// all of them to settle. A worker error is isolated: the worker is
// marked failed and an empty result substituted, never aborting the
// others or the run.
func (c *Coordinator) ingestAll(ctx context.Context, userID string, cred ingest.Credential) []models.IngestionResult {
	workers := c.registry.All()
	results := make([]models.IngestionResult, len(workers))

	var wg sync.WaitGroup
	for i, worker := range workers {
		wg.Add(1)
		go func(i int, worker ingest.Ingestor) {
			defer wg.Done()

			source := worker.Source()
			c.status.MarkWorker(userID, source, models.WorkerRunning, 0, "")

			result, err := func() (result models.IngestionResult, err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("worker panicked: %v", r)
					}
				}()
				return worker.Ingest(ctx, cred)
			}()
			if err != nil {
				// Google API errors can echo the failing request, token
				// included; scrub before logging or storing.
				msg := logging.SanitizeError(err)
				c.logger.Warn("ingestion worker failed",
					zap.String("user_id", userID),
					zap.String("source", string(source)),
					zap.String("error", msg))
				c.status.MarkWorker(userID, source, models.WorkerFailed, 0, msg)
				results[i] = models.EmptyResult(source)
				return
			}

			c.status.MarkWorker(userID, source, models.WorkerCompleted, result.ItemCount(), "")
			results[i] = result
		}(i, worker)
	}
	wg.Wait()

	return results
}
