package favorites

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlinky/vlinky/internal/client/notify"
	"github.com/vlinky/vlinky/internal/models"
)

type fakeBackend struct {
	FavoritesFunc func(ctx context.Context) ([]models.Favorite, error)
	AddFunc       func(ctx context.Context, creatorID string) (models.Favorite, error)
	RemoveFunc    func(ctx context.Context, creatorID string) error
	calls         int
}

func (f *fakeBackend) Favorites(ctx context.Context) ([]models.Favorite, error) {
	f.calls++
	return f.FavoritesFunc(ctx)
}
func (f *fakeBackend) AddFavorite(ctx context.Context, creatorID string) (models.Favorite, error) {
	f.calls++
	return f.AddFunc(ctx, creatorID)
}
func (f *fakeBackend) RemoveFavorite(ctx context.Context, creatorID string) error {
	f.calls++
	return f.RemoveFunc(ctx, creatorID)
}

type fakeSession string

func (s fakeSession) UserID() string { return string(s) }

type recorder struct {
	mu        sync.Mutex
	notes     []string
	redirects []string
}

func (r *recorder) Notify(level notify.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, level.String()+": "+msg)
}

func (r *recorder) Redirect(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, path)
}

func okBackend() *fakeBackend {
	return &fakeBackend{
		FavoritesFunc: func(context.Context) ([]models.Favorite, error) {
			return []models.Favorite{{ID: "f0", CreatorID: "c0"}}, nil
		},
		AddFunc: func(_ context.Context, id string) (models.Favorite, error) {
			return models.Favorite{ID: "f-" + id, UserID: "u1", CreatorID: id}, nil
		},
		RemoveFunc: func(context.Context, string) error { return nil },
	}
}

func TestToggle_RoundTrip(t *testing.T) {
	rec := &recorder{}
	h := New(okBackend(), fakeSession("u1"), rec, rec, nil)

	assert.False(t, h.IsFavorited("c1"))

	require.NoError(t, h.Toggle(context.Background(), "c1"))
	assert.True(t, h.IsFavorited("c1"))

	require.NoError(t, h.Toggle(context.Background(), "c1"))
	assert.False(t, h.IsFavorited("c1"))

	assert.Equal(t, []string{"ok: Added to favorites", "ok: Removed from favorites"}, rec.notes)
	assert.Empty(t, rec.redirects)
}

func TestToggle_Unauthenticated(t *testing.T) {
	backend := okBackend()
	rec := &recorder{}
	h := New(backend, fakeSession(""), rec, rec, nil)

	for _, id := range []string{"c1", "c2"} {
		err := h.Toggle(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	}

	assert.Empty(t, h.Favorites())
	assert.Zero(t, backend.calls)
	assert.Equal(t, []string{LoginPath, LoginPath}, rec.redirects)
	assert.Len(t, rec.notes, 2)
}

func TestToggle_BackendErrorKeepsState(t *testing.T) {
	backend := okBackend()
	rec := &recorder{}
	h := New(backend, fakeSession("u1"), rec, rec, nil)
	require.NoError(t, h.Load(context.Background()))

	boom := errors.New("network down")
	backend.AddFunc = func(context.Context, string) (models.Favorite, error) { return models.Favorite{}, boom }
	backend.RemoveFunc = func(context.Context, string) error { return boom }

	assert.ErrorIs(t, h.Toggle(context.Background(), "c1"), boom)
	assert.False(t, h.IsFavorited("c1"))

	assert.ErrorIs(t, h.Toggle(context.Background(), "c0"), boom)
	assert.True(t, h.IsFavorited("c0"))

	assert.Equal(t, []string{"error: Failed to update favorites", "error: Failed to update favorites"}, rec.notes)
	assert.False(t, h.Pending("c1"))
}

func TestLoad(t *testing.T) {
	backend := okBackend()
	rec := &recorder{}

	h := New(backend, fakeSession("u1"), rec, rec, nil)
	require.NoError(t, h.Load(context.Background()))
	assert.True(t, h.IsFavorited("c0"))

	anon := New(backend, fakeSession(""), rec, rec, nil)
	calls := backend.calls
	require.NoError(t, anon.Load(context.Background()))
	assert.Empty(t, anon.Favorites())
	assert.Equal(t, calls, backend.calls)
}

func TestToggle_BusyWhilePending(t *testing.T) {
	backend := okBackend()
	entered := make(chan struct{})
	release := make(chan struct{})
	backend.AddFunc = func(_ context.Context, id string) (models.Favorite, error) {
		close(entered)
		<-release
		return models.Favorite{ID: "f1", CreatorID: id}, nil
	}
	rec := &recorder{}
	h := New(backend, fakeSession("u1"), rec, rec, nil)

	done := make(chan error, 1)
	go func() { done <- h.Toggle(context.Background(), "c1") }()

	<-entered
	assert.True(t, h.Pending("c1"))
	assert.ErrorIs(t, h.Toggle(context.Background(), "c1"), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, h.Pending("c1"))
	assert.True(t, h.IsFavorited("c1"))
}
