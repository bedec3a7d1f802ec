// Package favorites keeps the signed-in user's favorite creators and
// toggles them against the backend.
package favorites

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/client/notify"
	"github.com/vlinky/vlinky/internal/models"
)

// LoginPath is where unauthenticated users are sent.
const LoginPath = "/login"

var (
	// ErrNotAuthenticated is returned when no user is signed in.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrBusy is returned while a change for the same creator is in flight.
	ErrBusy = errors.New("favorite change already in progress")
)

// Backend is the remote favorites table.
type Backend interface {
	Favorites(ctx context.Context) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, creatorID string) (models.Favorite, error)
	RemoveFavorite(ctx context.Context, creatorID string) error
}

// Session reports the signed-in user.
type Session interface {
	UserID() string
}

// Hook holds the local favorites list. Local state only changes after the
// backend confirms a change.
type Hook struct {
	backend  Backend
	session  Session
	notifier notify.Notifier
	redirect notify.Redirector
	log      *zap.Logger

	mu      sync.RWMutex
	items   []models.Favorite
	pending map[string]struct{}
}

// New creates an empty Hook.
func New(backend Backend, session Session, n notify.Notifier, r notify.Redirector, log *zap.Logger) *Hook {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hook{
		backend:  backend,
		session:  session,
		notifier: n,
		redirect: r,
		log:      log,
		pending:  make(map[string]struct{}),
	}
}

// Favorites returns a copy of the local list.
func (h *Hook) Favorites() []models.Favorite {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.Favorite, len(h.items))
	copy(out, h.items)
	return out
}

// IsFavorited reports whether creatorID is in the local list.
func (h *Hook) IsFavorited(creatorID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.indexLocked(creatorID) >= 0
}

// Pending reports whether a change for creatorID is in flight.
func (h *Hook) Pending(creatorID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.pending[creatorID]
	return ok
}

func (h *Hook) indexLocked(creatorID string) int {
	for i, f := range h.items {
		if f.CreatorID == creatorID {
			return i
		}
	}
	return -1
}

// Load replaces the local list with the backend's. Without a user the list
// is cleared and the backend is not called.
func (h *Hook) Load(ctx context.Context) error {
	if h.session.UserID() == "" {
		h.mu.Lock()
		h.items = nil
		h.mu.Unlock()
		return nil
	}
	favs, err := h.backend.Favorites(ctx)
	if err != nil {
		h.log.Error("failed to load favorites", zap.Error(err))
		return err
	}
	h.mu.Lock()
	h.items = favs
	h.mu.Unlock()
	return nil
}

// Toggle removes creatorID if it is a favorite and adds it otherwise.
func (h *Hook) Toggle(ctx context.Context, creatorID string) error {
	if h.IsFavorited(creatorID) {
		return h.Remove(ctx, creatorID)
	}
	return h.Add(ctx, creatorID)
}

// Add favorites creatorID.
func (h *Hook) Add(ctx context.Context, creatorID string) error {
	if err := h.begin(creatorID); err != nil {
		return err
	}
	defer h.end(creatorID)

	fav, err := h.backend.AddFavorite(ctx, creatorID)
	if err != nil {
		return h.fail("add", creatorID, err)
	}

	h.mu.Lock()
	if h.indexLocked(creatorID) < 0 {
		h.items = append(h.items, fav)
	}
	h.mu.Unlock()

	h.notifier.Notify(notify.Success, "Added to favorites")
	return nil
}

// Remove unfavorites creatorID.
func (h *Hook) Remove(ctx context.Context, creatorID string) error {
	if err := h.begin(creatorID); err != nil {
		return err
	}
	defer h.end(creatorID)

	if err := h.backend.RemoveFavorite(ctx, creatorID); err != nil {
		return h.fail("remove", creatorID, err)
	}

	h.mu.Lock()
	kept := h.items[:0:0]
	for _, f := range h.items {
		if f.CreatorID != creatorID {
			kept = append(kept, f)
		}
	}
	h.items = kept
	h.mu.Unlock()

	h.notifier.Notify(notify.Success, "Removed from favorites")
	return nil
}

// begin checks the session and marks creatorID as in flight.
func (h *Hook) begin(creatorID string) error {
	if h.session.UserID() == "" {
		h.notifier.Notify(notify.Error, "Please log in to save favorites")
		h.redirect.Redirect(LoginPath)
		return ErrNotAuthenticated
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, busy := h.pending[creatorID]; busy {
		return ErrBusy
	}
	h.pending[creatorID] = struct{}{}
	return nil
}

func (h *Hook) end(creatorID string) {
	h.mu.Lock()
	delete(h.pending, creatorID)
	h.mu.Unlock()
}

func (h *Hook) fail(op, creatorID string, err error) error {
	h.log.Error("failed to update favorites",
		zap.String("op", op),
		zap.String("creator_id", creatorID),
		zap.Error(err),
	)
	h.notifier.Notify(notify.Error, "Failed to update favorites")
	return err
}
