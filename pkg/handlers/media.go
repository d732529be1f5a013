package handlers

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/media"
	"github.com/haashim-ali/boggart/pkg/models"
	"github.com/haashim-ali/boggart/pkg/repositories"
)

// MediaStatusResponse is the poll response for a video asset.
type MediaStatusResponse struct {
	ContentID string             `json:"contentId"`
	Video     models.MediaStatus `json:"video"`
}

// MediaHandler serves video status polls and the video files themselves.
// Content bundles are immutable, so the latest lifecycle status is
// joined in from the media manager at read time.
type MediaHandler struct {
	manager *media.Manager
	users   repositories.UserStore
	logger  *zap.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(manager *media.Manager, users repositories.UserStore, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{manager: manager, users: users, logger: logger}
}

// RegisterRoutes registers the media handler's routes on the given mux.
func (h *MediaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/media/video/{contentId}/status", h.VideoStatus)
	mux.HandleFunc("GET /api/media/video/{contentId}", h.Video)
}

// VideoStatus handles GET /api/media/video/{contentId}/status requests.
func (h *MediaHandler) VideoStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing userId")
		return
	}
	contentID := r.PathValue("contentId")

	bundle, err := h.users.ContentByID(userID, contentID)
	if err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "content not found")
		return
	}

	response := MediaStatusResponse{
		ContentID: bundle.ID,
		Video:     h.manager.Status(bundle.ID),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode media status response", zap.Error(err))
	}
}

// Video handles GET /api/media/video/{contentId} requests, serving the
// downloaded file.
func (h *MediaHandler) Video(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing userId")
		return
	}
	contentID := r.PathValue("contentId")

	if _, err := h.users.ContentByID(userID, contentID); err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "content not found")
		return
	}

	path, ok := h.manager.FilePath(contentID)
	if !ok {
		_ = ErrorResponse(w, http.StatusNotFound, "not_ready", "video file not available")
		return
	}
	if _, err := os.Stat(path); err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "not_ready", "video file not available")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, path)
}
