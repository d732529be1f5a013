package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/apperrors"
	"github.com/haashim-ali/boggart/pkg/content"
	"github.com/haashim-ali/boggart/pkg/models"
	"github.com/haashim-ali/boggart/pkg/repositories"
)

// GenerateRequest is the body for POST /api/generate.
type GenerateRequest struct {
	UserID string `json:"userId"`
	Goal   string `json:"goal"`
}

// GenerateResponse wraps a single generated content bundle.
type GenerateResponse struct {
	Content *models.GeneratedContent `json:"content"`
}

// BrandsResponse wraps the fixed brand ad bundles.
type BrandsResponse struct {
	Brands []*models.GeneratedContent `json:"brands"`
}

// GenerateHandler exposes content generation endpoints.
type GenerateHandler struct {
	generator *content.Generator
	users     repositories.UserStore
	logger    *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generator *content.Generator, users repositories.UserStore, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{generator: generator, users: users, logger: logger}
}

// RegisterRoutes registers the generate handler's routes on the given mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate", h.Generate)
	mux.HandleFunc("GET /api/generate/brands", h.Brands)
}

// Generate handles POST /api/generate requests. Requires a synthesized
// profile; the generated bundle is persisted before it is returned.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.UserID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing userId")
		return
	}
	if req.Goal == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing goal")
		return
	}

	profile, err := h.users.Profile(req.UserID)
	if err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "no_profile", "Profile not found. Run the pipeline first.")
		return
	}

	bundle, err := h.generator.Generate(r.Context(), *profile, req.Goal)
	if err != nil {
		h.logger.Error("Content generation failed",
			zap.String("user_id", req.UserID),
			zap.String("goal", req.Goal),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "generation_failed", "content generation failed")
		return
	}

	h.users.AddContent(req.UserID, *bundle)

	if err := WriteJSON(w, http.StatusOK, GenerateResponse{Content: bundle}); err != nil {
		h.logger.Error("Failed to encode generate response", zap.Error(err))
	}
}

// Brands handles GET /api/generate/brands requests, generating one
// bundle per fixed brand goal.
func (h *GenerateHandler) Brands(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing userId")
		return
	}

	profile, err := h.users.Profile(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoProfile) {
			_ = ErrorResponse(w, http.StatusNotFound, "no_profile", "Profile not found. Run the pipeline first.")
			return
		}
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}

	brands, err := h.generator.GenerateBrandAds(r.Context(), *profile)
	if err != nil {
		h.logger.Error("Brand generation failed",
			zap.String("user_id", userID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "generation_failed", "brand generation failed")
		return
	}

	for _, bundle := range brands {
		h.users.AddContent(userID, *bundle)
	}

	if err := WriteJSON(w, http.StatusOK, BrandsResponse{Brands: brands}); err != nil {
		h.logger.Error("Failed to encode brands response", zap.Error(err))
	}
}
