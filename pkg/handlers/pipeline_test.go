package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/ingest"
	"github.com/haashim-ali/boggart/pkg/llm"
	"github.com/haashim-ali/boggart/pkg/models"
	"github.com/haashim-ali/boggart/pkg/pipeline"
	"github.com/haashim-ali/boggart/pkg/repositories"
)

const testProfileJSON = `{
  "identity": { "name": "Alice", "selfDescription": "test subject" },
  "relationships": [],
  "psychology": {
    "bigFive": { "openness": 0.5, "conscientiousness": 0.5, "extraversion": 0.5, "agreeableness": 0.5, "neuroticism": 0.5 },
    "motivations": [], "fears": [], "decisionStyle": "quick", "emotionalPatterns": []
  },
  "interests": [], "communication": { "formality": 5, "verbosity": 5, "humorStyle": "dry", "preferredChannels": [], "notablePatterns": [] },
  "routines": [], "values": [], "summary": "test profile"
}`

type blockingIngestor struct {
	source  models.Source
	release chan struct{}
}

func (b *blockingIngestor) Source() models.Source { return b.source }

func (b *blockingIngestor) Ingest(ctx context.Context, cred ingest.Credential) (models.IngestionResult, error) {
	if b.release != nil {
		<-b.release
	}
	return models.EmptyResult(b.source), nil
}

func newPipelineMux(t *testing.T, workers ...ingest.Ingestor) (*http.ServeMux, repositories.UserStore) {
	t.Helper()

	client := llm.NewMockTextClient()
	client.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return testProfileJSON, nil
	}

	registry := ingest.NewRegistry(workers...)
	users := repositories.NewMemoryUserStore()
	status := repositories.NewMemoryStatusStore(registry.Sources())
	pool := llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())
	condenser := pipeline.NewCondenser(pipeline.NewLLMSummarizer(client), pool, zap.NewNop())
	synth := pipeline.NewSynthesizer(client, zap.NewNop())
	coordinator := pipeline.NewCoordinator(registry, condenser, synth, users, status, zap.NewNop())

	mux := http.NewServeMux()
	NewPipelineHandler(coordinator, zap.NewNop()).RegisterRoutes(mux)
	return mux, users
}

func TestPipelineHandler_StartValidation(t *testing.T) {
	mux, _ := newPipelineMux(t, &blockingIngestor{source: models.SourceGmail})

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: "{"},
		{name: "missing userId", body: `{"accessToken":"tok"}`},
		{name: "missing accessToken", body: `{"userId":"user-1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/pipeline/start", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPipelineHandler_StartConflictWhileRunning(t *testing.T) {
	release := make(chan struct{})
	mux, _ := newPipelineMux(t, &blockingIngestor{source: models.SourceGmail, release: release})

	start := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/pipeline/start",
			strings.NewReader(`{"userId":"user-1","accessToken":"tok"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	first := start()
	assert.Equal(t, http.StatusOK, first.Code)

	second := start()
	assert.Equal(t, http.StatusConflict, second.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, "pipeline_running", body["error"])

	close(release)
}

func TestPipelineHandler_StatusRequiresUserID(t *testing.T) {
	mux, _ := newPipelineMux(t, &blockingIngestor{source: models.SourceGmail})

	req := httptest.NewRequest(http.MethodGet, "/api/pipeline/status", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPipelineHandler_StatusReflectsRun(t *testing.T) {
	mux, users := newPipelineMux(t, &blockingIngestor{source: models.SourceGmail})

	// Before any run: idle.
	req := httptest.NewRequest(http.MethodGet, "/api/pipeline/status?userId=user-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.PipelineStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, models.StageIdle, status.Stage)

	// Run to completion.
	startReq := httptest.NewRequest(http.MethodPost, "/api/pipeline/start",
		strings.NewReader(`{"userId":"user-1","accessToken":"tok"}`))
	startRec := httptest.NewRecorder()
	mux.ServeHTTP(startRec, startReq)
	require.Equal(t, http.StatusOK, startRec.Code)

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pipeline/status?userId=user-1", nil))
		var status models.PipelineStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Stage == models.StageComplete
	}, 5*time.Second, 10*time.Millisecond)

	profile, err := users.Profile("user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
}
