package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/vlinky/vlinky/internal/middleware"
	"github.com/vlinky/vlinky/internal/models"
	"github.com/vlinky/vlinky/internal/service"
)

// ApplicationsService defines the creator onboarding operations.
type ApplicationsService interface {
	Submit(ctx context.Context, userID string, app models.CreatorApplication) (models.CreatorApplication, error)
	LatestApproved(ctx context.Context, userID string) (models.CreatorApplication, error)
	Review(ctx context.Context, id string, status models.ApplicationStatus) (models.CreatorApplication, error)
}

// ApplicationsHandler serves creator applications.
type ApplicationsHandler struct {
	ApplicationsService ApplicationsService
}

// ApplicationRequest is the onboarding form as submitted by a client.
type ApplicationRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=80"`
	Category    string `json:"category" validate:"required"`
	Bio         string `json:"bio" validate:"max=2000"`
	AvatarURL   string `json:"avatarUrl" validate:"omitempty,url"`
	CountryCode string `json:"countryCode" validate:"omitempty,len=2"`
	PriceCents  int64  `json:"priceCents" validate:"gte=0"`
}

// Submit handles POST /api/creator-applications.
func (h *ApplicationsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	app, err := h.ApplicationsService.Submit(r.Context(), middleware.GetUserIDFromContext(r.Context()), models.CreatorApplication{
		DisplayName: req.DisplayName,
		Category:    req.Category,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		CountryCode: req.CountryCode,
		PriceCents:  req.PriceCents,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// LatestApproved handles GET /api/creator-applications/latest-approved.
// A user without an approved application gets 404.
func (h *ApplicationsHandler) LatestApproved(w http.ResponseWriter, r *http.Request) {
	app, err := h.ApplicationsService.LatestApproved(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Review handles PATCH /api/admin/creator-applications/{id}.
func (h *ApplicationsHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.ApplicationStatus `json:"status" validate:"required"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	app, err := h.ApplicationsService.Review(r.Context(), id, req.Status)
	if errors.Is(err, service.ErrInvalidStatus) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
