package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/vlinky/vlinky/internal/middleware"
	"github.com/vlinky/vlinky/internal/models"
	"github.com/vlinky/vlinky/internal/service"
)

// VideoRequestsService defines the fan-side video request operations.
type VideoRequestsService interface {
	Create(ctx context.Context, fanID string, vr models.VideoRequest) (models.VideoRequest, error)
	List(ctx context.Context, fanID string) ([]models.VideoRequest, error)
	Rate(ctx context.Context, fanID, requestID string, rating int) error
}

// VideoRequestsHandler serves a fan's video requests and their ratings.
type VideoRequestsHandler struct {
	VideoRequestsService VideoRequestsService
}

// Create handles POST /api/video-requests.
func (h *VideoRequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreatorID    string `json:"creatorId" validate:"required,uuid"`
		Occasion     string `json:"occasion" validate:"required,max=120"`
		Instructions string `json:"instructions" validate:"max=2000"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	vr, err := h.VideoRequestsService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), models.VideoRequest{
		CreatorID:    req.CreatorID,
		Occasion:     req.Occasion,
		Instructions: req.Instructions,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vr)
}

// List handles GET /api/video-requests.
func (h *VideoRequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.VideoRequestsService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Rate handles PUT /api/video-requests/{id}/rating. Rating a request the
// caller does not own yields 404.
func (h *VideoRequestsHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Rating int `json:"rating"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	err := h.VideoRequestsService.Rate(r.Context(), middleware.GetUserIDFromContext(r.Context()), id, req.Rating)
	if errors.Is(err, service.ErrInvalidRating) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
