package http

import (
	"context"
	"net/http"

	"github.com/vlinky/vlinky/internal/middleware"
	"github.com/vlinky/vlinky/internal/models"
)

// FavoritesService defines the favorites operations used by FavoritesHandler.
type FavoritesService interface {
	List(ctx context.Context, userID string) ([]models.Favorite, error)
	Add(ctx context.Context, userID, creatorID string) (models.Favorite, error)
	Remove(ctx context.Context, userID, creatorID string) error
}

// FavoritesHandler serves the current user's favorite creators.
type FavoritesHandler struct {
	FavoritesService FavoritesService
}

// List handles GET /api/favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	favs, err := h.FavoritesService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

// Add handles POST /api/favorites with a {"creatorId"} body.
// Favoriting twice yields 409.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreatorID string `json:"creatorId" validate:"required,uuid"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	fav, err := h.FavoritesService.Add(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.CreatorID)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

// Remove handles DELETE /api/favorites/{creatorId}. Removing a creator
// that is not a favorite succeeds.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := uuidParam(w, r, "creatorId")
	if !ok {
		return
	}
	if err := h.FavoritesService.Remove(r.Context(), middleware.GetUserIDFromContext(r.Context()), creatorID); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
