package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/media"
	"github.com/haashim-ali/boggart/pkg/models"
	"github.com/haashim-ali/boggart/pkg/repositories"
)

type doneVideoGenerator struct{}

func (d *doneVideoGenerator) Submit(ctx context.Context, prompt string, cfg media.VideoConfig) (media.Operation, error) {
	return media.Operation{Name: "operations/test", Done: true, ResultRef: "ref"}, nil
}

func (d *doneVideoGenerator) Poll(ctx context.Context, op media.Operation) (media.Operation, error) {
	return op, nil
}

func (d *doneVideoGenerator) Download(ctx context.Context, resultRef, destPath string) error {
	return os.WriteFile(destPath, []byte("mp4 bytes"), 0o644)
}

func newMediaFixture(t *testing.T) (*http.ServeMux, *media.Manager, repositories.UserStore) {
	t.Helper()

	manager := media.NewManager(&doneVideoGenerator{},
		repositories.NewMemoryMediaStatusStore(),
		repositories.NewMemoryMediaFileStore(),
		media.ManagerConfig{Dir: t.TempDir(), PollInterval: time.Millisecond, MaxPollAttempts: 3},
		zap.NewNop())

	users := repositories.NewMemoryUserStore()
	mux := http.NewServeMux()
	NewMediaHandler(manager, users, zap.NewNop()).RegisterRoutes(mux)
	return mux, manager, users
}

func TestMediaHandler_StatusJoinsLatestState(t *testing.T) {
	mux, manager, users := newMediaFixture(t)

	bundle := models.GeneratedContent{ID: "c1", Goal: "goal"}
	users.AddContent("user-1", bundle)
	manager.Start(bundle)

	require.Eventually(t, func() bool {
		return manager.Status("c1").State == models.MediaStateCompleted
	}, 5*time.Second, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/api/media/video/c1/status?userId=user-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp MediaStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "c1", resp.ContentID)
	assert.Equal(t, models.MediaStateCompleted, resp.Video.State)
	assert.Equal(t, "/api/media/video/c1", resp.Video.URL)
}

func TestMediaHandler_StatusUnknownContent(t *testing.T) {
	mux, _, _ := newMediaFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/media/video/missing/status?userId=user-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMediaHandler_ServesVideoFile(t *testing.T) {
	mux, manager, users := newMediaFixture(t)

	bundle := models.GeneratedContent{ID: "c1", Goal: "goal"}
	users.AddContent("user-1", bundle)
	manager.Start(bundle)

	require.Eventually(t, func() bool {
		_, ok := manager.FilePath("c1")
		return ok
	}, 5*time.Second, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/api/media/video/c1?userId=user-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mp4 bytes", rec.Body.String())

	path, _ := manager.FilePath("c1")
	assert.Equal(t, "c1.mp4", filepath.Base(path))
}

func TestMediaHandler_VideoNotReady(t *testing.T) {
	mux, _, users := newMediaFixture(t)
	users.AddContent("user-1", models.GeneratedContent{ID: "c1"})

	req := httptest.NewRequest(http.MethodGet, "/api/media/video/c1?userId=user-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not available")
}

func TestMediaHandler_VideoScopedPerUser(t *testing.T) {
	mux, manager, users := newMediaFixture(t)

	bundle := models.GeneratedContent{ID: "c1"}
	users.AddContent("user-1", bundle)
	manager.Start(bundle)

	// Let the background video goroutine finish before TempDir cleanup.
	t.Cleanup(func() {
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			switch manager.Status(bundle.ID).State {
			case models.MediaStateCompleted, models.MediaStateFailed:
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/media/video/c1?userId=other-user", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
