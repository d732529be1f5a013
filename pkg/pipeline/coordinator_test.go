package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/apperrors"
	"github.com/haashim-ali/boggart/pkg/ingest"
	"github.com/haashim-ali/boggart/pkg/llm"
	"github.com/haashim-ali/boggart/pkg/models"
	"github.com/haashim-ali/boggart/pkg/repositories"
)

type mockIngestor struct {
	source     models.Source
	IngestFunc func(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error)
}

func (m *mockIngestor) Source() models.Source { return m.source }

func (m *mockIngestor) Ingest(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, cred)
	}
	return models.EmptyResult(m.source), nil
}

type coordinatorFixture struct {
	coordinator *Coordinator
	users       repositories.UserStore
	status      repositories.PipelineStatusStore
	client      *llm.MockTextClient
}

func newCoordinatorFixture(t *testing.T, ingestors ...ingest.Ingestor) *coordinatorFixture {
	t.Helper()

	client := llm.NewMockTextClient()
	client.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return profileJSON, nil
	}

	registry := ingest.NewRegistry(ingestors...)
	users := repositories.NewMemoryUserStore()
	status := repositories.NewMemoryStatusStore(registry.Sources())
	pool := llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: 4}, zap.NewNop())
	condenser := NewCondenser(NewLLMSummarizer(client), pool, zap.NewNop())
	synth := NewSynthesizer(client, zap.NewNop())

	return &coordinatorFixture{
		coordinator: NewCoordinator(registry, condenser, synth, users, status, zap.NewNop()),
		users:       users,
		status:      status,
		client:      client,
	}
}

func waitForStage(t *testing.T, f *coordinatorFixture, userID string, stage models.PipelineStage) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.coordinator.Status(userID).Stage == stage
	}, 5*time.Second, 10*time.Millisecond, "pipeline never reached stage %s", stage)
}

func TestCoordinator_CompletesAndPersistsProfile(t *testing.T) {
	gmail := &mockIngestor{
		source: models.SourceGmail,
		IngestFunc: func(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error) {
			return models.IngestionResult{
				Source: models.SourceGmail,
				People: []models.Person{
					{ID: "g1", Name: "alice@example.com", Emails: []string{"alice@example.com"}, InteractionCount: 2},
				},
			}, nil
		},
	}
	contacts := &mockIngestor{
		source: models.SourceContacts,
		IngestFunc: func(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error) {
			return models.IngestionResult{
				Source: models.SourceContacts,
				People: []models.Person{
					{ID: "c1", Name: "Alice Mercer", Emails: []string{"alice@example.com"}},
				},
			}, nil
		},
	}
	f := newCoordinatorFixture(t, gmail, contacts)

	require.NoError(t, f.coordinator.Start(context.Background(), "user-1", ingest.Credential{AccessToken: "tok"}))
	waitForStage(t, f, "user-1", models.StageComplete)

	profile, err := f.users.Profile("user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)

	entities, err := f.users.Entities("user-1")
	require.NoError(t, err)
	require.Len(t, entities.People, 1, "people sharing an email merge into one")
	assert.Equal(t, "Alice Mercer", entities.People[0].Name)
}

func TestCoordinator_RejectsConcurrentRuns(t *testing.T) {
	release := make(chan struct{})
	slow := &mockIngestor{
		source: models.SourceGmail,
		IngestFunc: func(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error) {
			<-release
			return models.EmptyResult(models.SourceGmail), nil
		},
	}
	f := newCoordinatorFixture(t, slow)

	require.NoError(t, f.coordinator.Start(context.Background(), "user-1", ingest.Credential{AccessToken: "tok"}))

	err := f.coordinator.Start(context.Background(), "user-1", ingest.Credential{AccessToken: "tok"})
	assert.ErrorIs(t, err, apperrors.ErrPipelineRunning)

	// The lock is per user; another user can start.
	require.NoError(t, f.coordinator.Start(context.Background(), "user-2", ingest.Credential{AccessToken: "tok"}))

	close(release)
	waitForStage(t, f, "user-1", models.StageComplete)
	waitForStage(t, f, "user-2", models.StageComplete)

	// The slot is released after completion.
	require.Eventually(t, func() bool {
		return f.coordinator.Start(context.Background(), "user-1", ingest.Credential{AccessToken: "tok"}) == nil
	}, 5*time.Second, 10*time.Millisecond)
	waitForStage(t, f, "user-1", models.StageComplete)
}

func TestCoordinator_WorkerFailureIsIsolated(t *testing.T) {
	failing := &mockIngestor{
		source: models.SourceCalendar,
		IngestFunc: func(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error) {
			return models.IngestionResult{}, errors.New("token expired")
		},
	}
	healthy := &mockIngestor{
		source: models.SourceGmail,
		IngestFunc: func(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error) {
			return models.IngestionResult{
				Source: models.SourceGmail,
				People: []models.Person{{ID: "g1", Name: "Alice", Emails: []string{"alice@example.com"}}},
			}, nil
		},
	}
	f := newCoordinatorFixture(t, failing, healthy)

	require.NoError(t, f.coordinator.Start(context.Background(), "user-1", ingest.Credential{AccessToken: "tok"}))
	waitForStage(t, f, "user-1", models.StageComplete)

	status := f.coordinator.Status("user-1")
	byName := make(map[models.Source]models.WorkerState)
	for _, w := range status.Workers {
		byName[w.Name] = w
	}
	assert.Equal(t, models.WorkerFailed, byName[models.SourceCalendar].Status)
	assert.Equal(t, "token expired", byName[models.SourceCalendar].Error)
	assert.Equal(t, models.WorkerCompleted, byName[models.SourceGmail].Status)

	entities, err := f.users.Entities("user-1")
	require.NoError(t, err)
	assert.Len(t, entities.People, 1, "healthy worker output survives a sibling failure")
}

func TestCoordinator_WorkerPanicIsIsolated(t *testing.T) {
	panicking := &mockIngestor{
		source: models.SourceDrive,
		IngestFunc: func(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error) {
			panic("nil dereference")
		},
	}
	f := newCoordinatorFixture(t, panicking)

	require.NoError(t, f.coordinator.Start(context.Background(), "user-1", ingest.Credential{AccessToken: "tok"}))
	waitForStage(t, f, "user-1", models.StageComplete)

	status := f.coordinator.Status("user-1")
	require.Len(t, status.Workers, 1)
	assert.Equal(t, models.WorkerFailed, status.Workers[0].Status)
	assert.Contains(t, status.Workers[0].Error, "worker panicked")
}

func TestCoordinator_SynthesisFailureFailsRun(t *testing.T) {
	f := newCoordinatorFixture(t, &mockIngestor{source: models.SourceGmail})
	f.client.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model unavailable")
	}

	require.NoError(t, f.coordinator.Start(context.Background(), "user-1", ingest.Credential{AccessToken: "tok"}))
	waitForStage(t, f, "user-1", models.StageError)

	status := f.coordinator.Status("user-1")
	assert.Contains(t, status.Error, "model unavailable")

	_, err := f.users.Profile("user-1")
	assert.ErrorIs(t, err, apperrors.ErrNoProfile, "a failed run must not persist a profile")

	// The slot is released on failure too.
	require.Eventually(t, func() bool {
		return f.coordinator.Start(context.Background(), "user-1", ingest.Credential{AccessToken: "tok"}) == nil
	}, 5*time.Second, 10*time.Millisecond, "restart after failure must be allowed")
}

func TestCoordinator_CondenserFailureFallsBackToRawSamples(t *testing.T) {
	gmail := &mockIngestor{
		source: models.SourceGmail,
		IngestFunc: func(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error) {
			return models.IngestionResult{
				Source: models.SourceGmail,
				Moments: []models.Moment{
					{ID: "m1", Source: models.SourceGmail, Type: models.MomentEmailReceived, Summary: "lunch plans"},
				},
			}, nil
		},
	}
	f := newCoordinatorFixture(t, gmail)

	var mu sync.Mutex
	var synthesisPrompt string
	f.client.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "You are condensing") {
			return "", errors.New("condense backend down")
		}
		mu.Lock()
		synthesisPrompt = prompt
		mu.Unlock()
		return profileJSON, nil
	}

	require.NoError(t, f.coordinator.Start(context.Background(), "user-1", ingest.Credential{AccessToken: "tok"}))
	waitForStage(t, f, "user-1", models.StageComplete)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, synthesisPrompt)
	assert.NotContains(t, synthesisPrompt, "ANALYZED DATA", "failed condensation must fall back to raw samples")
	assert.Contains(t, synthesisPrompt, "lunch plans")
}

func TestCoordinator_StatusDefaultsToIdle(t *testing.T) {
	f := newCoordinatorFixture(t, &mockIngestor{source: models.SourceGmail})

	status := f.coordinator.Status("nobody")
	assert.Equal(t, models.StageIdle, status.Stage)
	require.Len(t, status.Workers, 1)
	assert.Equal(t, models.WorkerPending, status.Workers[0].Status)
}
