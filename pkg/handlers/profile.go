package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/apperrors"
	"github.com/haashim-ali/boggart/pkg/models"
	"github.com/haashim-ali/boggart/pkg/repositories"
)

// ProfileResponse wraps a synthesized profile. Profile is null when the
// pipeline has not completed for the user.
type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
}

// EntitiesResponse wraps the user's entity graph.
type EntitiesResponse struct {
	Entities *models.EntityGraph `json:"entities"`
}

// ProfileHandler exposes profile and entity read endpoints.
type ProfileHandler struct {
	users  repositories.UserStore
	logger *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users repositories.UserStore, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, logger: logger}
}

// RegisterRoutes registers the profile handler's routes on the given mux.
func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/profile", h.Profile)
	mux.HandleFunc("GET /api/entities", h.Entities)
}

// Profile handles GET /api/profile requests. A missing profile is not
// an error; the response carries a null profile.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing userId")
		return
	}

	profile, err := h.users.Profile(userID)
	if err != nil && !errors.Is(err, apperrors.ErrNoProfile) {
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}

	if err := WriteJSON(w, http.StatusOK, ProfileResponse{Profile: profile}); err != nil {
		h.logger.Error("Failed to encode profile response", zap.Error(err))
	}
}

// Entities handles GET /api/entities requests.
func (h *ProfileHandler) Entities(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing userId")
		return
	}

	entities, err := h.users.Entities(userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load entities")
		return
	}

	if err := WriteJSON(w, http.StatusOK, EntitiesResponse{Entities: entities}); err != nil {
		h.logger.Error("Failed to encode entities response", zap.Error(err))
	}
}
