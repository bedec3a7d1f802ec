// Package http provides the HTTP handlers of the VLINKY API.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/vlinky/vlinky/internal/middleware"
	"github.com/vlinky/vlinky/internal/models"
	"github.com/vlinky/vlinky/internal/repository"
	"github.com/vlinky/vlinky/internal/service"
)

// AuthService defines the authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates an account and returns its first session.
	Register(ctx context.Context, email, password string) (models.Session, error)
	// Login checks credentials and returns a new session.
	Login(ctx context.Context, email, password string) (models.Session, error)
	// Logout ends the session for token.
	Logout(ctx context.Context, token string) error
	// User returns the account for id.
	User(ctx context.Context, id string) (models.User, error)
}

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// Credentials is the JSON payload for registration and login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	session, err := h.AuthService.Register(r.Context(), req.Email, req.Password)
	if errors.Is(err, repository.ErrConflict) {
		http.Error(w, "user already exists", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	session, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), middleware.BearerToken(r)); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.AuthService.User(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
