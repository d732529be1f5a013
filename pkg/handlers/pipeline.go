package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/apperrors"
	"github.com/haashim-ali/boggart/pkg/ingest"
	"github.com/haashim-ali/boggart/pkg/pipeline"
)

// StartPipelineRequest is the body for POST /api/pipeline/start.
type StartPipelineRequest struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// PipelineHandler exposes pipeline control and status endpoints.
type PipelineHandler struct {
	coordinator *pipeline.Coordinator
	logger      *zap.Logger
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(coordinator *pipeline.Coordinator, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{coordinator: coordinator, logger: logger}
}

// RegisterRoutes registers the pipeline handler's routes on the given mux.
func (h *PipelineHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/pipeline/start", h.Start)
	mux.HandleFunc("GET /api/pipeline/status", h.Status)
}

// Start handles POST /api/pipeline/start requests. It kicks off a
// background pipeline run and returns immediately. A run already in
// flight for the user is a conflict.
func (h *PipelineHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartPipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.UserID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing userId")
		return
	}
	if req.AccessToken == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing accessToken")
		return
	}

	cred := ingest.Credential{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	}

	if err := h.coordinator.Start(r.Context(), req.UserID, cred); err != nil {
		if errors.Is(err, apperrors.ErrPipelineRunning) {
			_ = ErrorResponse(w, http.StatusConflict, "pipeline_running", err.Error())
			return
		}
		h.logger.Error("Failed to start pipeline",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to start pipeline")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]bool{"ok": true}); err != nil {
		h.logger.Error("Failed to encode start response", zap.Error(err))
	}
}

// Status handles GET /api/pipeline/status requests. Always responds,
// returning the idle default for a user with no run.
func (h *PipelineHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing userId")
		return
	}

	status := h.coordinator.Status(userID)
	if err := WriteJSON(w, http.StatusOK, status); err != nil {
		h.logger.Error("Failed to encode status response", zap.Error(err))
	}
}
