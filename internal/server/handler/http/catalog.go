package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/vlinky/vlinky/internal/models"
	"github.com/vlinky/vlinky/internal/repository"
)

// CatalogService defines the public discovery reads.
type CatalogService interface {
	Countries(ctx context.Context) ([]models.Country, error)
	Creators(ctx context.Context, f repository.CreatorFilter) ([]models.Creator, error)
}

// CatalogHandler serves public reference data.
type CatalogHandler struct {
	CatalogService CatalogService
}

// Countries handles GET /api/countries.
func (h *CatalogHandler) Countries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.CatalogService.Countries(r.Context())
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

// Creators handles GET /api/creators?q=&category=&limit=.
func (h *CatalogHandler) Creators(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.CreatorFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		f.Limit = n
	}

	creators, err := h.CatalogService.Creators(r.Context(), f)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creators)
}
