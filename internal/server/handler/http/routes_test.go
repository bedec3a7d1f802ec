package http

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/middleware"
	"github.com/vlinky/vlinky/internal/models"
	"github.com/vlinky/vlinky/internal/realtime"
	"github.com/vlinky/vlinky/internal/repository"
	"github.com/vlinky/vlinky/internal/service"
)

const (
	creatorID     = "6f1c2b1e-8c1a-4a7e-9d55-0f3b8a6f2d10"
	applicationID = "0b7e4f0e-2d5b-4c6a-8a51-3c9e2f7d1a44"
	videoID       = "9a3d5c71-6e2f-4b8a-b0c4-7f1e2d3c4b5a"
	otherVideoID  = "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
)

type sessions map[string]string

func (s sessions) Authenticate(_ context.Context, token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", service.ErrUnauthenticated
}

type admins map[string]bool

func (a admins) IsAdmin(_ context.Context, id string) (bool, error) { return a[id], nil }

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type testEnv struct {
	router http.Handler
	hub    *realtime.Hub
	favs   *fakeFavoritesService
	apps   *fakeApplicationsService
	videos *fakeVideoRequestsService
	cat    *fakeCatalogService
	db     *pinger
}

func newTestEnv() *testEnv {
	env := &testEnv{
		hub:    realtime.NewHub(nil),
		favs:   &fakeFavoritesService{},
		apps:   &fakeApplicationsService{},
		videos: &fakeVideoRequestsService{},
		cat:    &fakeCatalogService{},
		db:     &pinger{},
	}
	env.router = NewRouter(Router{
		Auth:          &AuthHandler{AuthService: &fakeAuthService{}},
		Favorites:     &FavoritesHandler{FavoritesService: env.favs},
		Applications:  &ApplicationsHandler{ApplicationsService: env.apps},
		VideoRequests: &VideoRequestsHandler{VideoRequestsService: env.videos},
		Catalog:       &CatalogHandler{CatalogService: env.cat},
		Realtime:      &RealtimeHandler{Hub: env.hub, Log: zap.NewNop(), KeepAlive: time.Hour},
		Notify:        &NotifyHandler{Log: zap.NewNop()},
		Health:        &HealthHandler{DB: env.db},
		Sessions:      sessions{"fan-token": "fan1", "admin-token": "boss"},
		Admins:        admins{"boss": true},
		CORS:          middleware.NewCORSPolicy([]string{"https://vlinky.com"}),
	}, zap.NewNop())
	return env
}

func (env *testEnv) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ProtectedRoutesNeedSession(t *testing.T) {
	env := newTestEnv()
	assert.Equal(t, http.StatusUnauthorized, env.do("GET", "/api/favorites", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do("GET", "/api/favorites", "", "stolen").Code)
}

func TestRouter_Favorites(t *testing.T) {
	env := newTestEnv()
	var removed string
	env.favs.AddFunc = func(ctx context.Context, userID, cid string) (models.Favorite, error) {
		if cid == creatorID {
			return models.Favorite{ID: "f1", UserID: userID, CreatorID: cid}, nil
		}
		return models.Favorite{}, repository.ErrNotFound
	}
	env.favs.RemoveFunc = func(ctx context.Context, userID, cid string) error {
		removed = userID + "/" + cid
		return nil
	}
	env.favs.ListFunc = func(ctx context.Context, userID string) ([]models.Favorite, error) {
		return []models.Favorite{}, nil
	}

	rec := env.do("POST", "/api/favorites", `{"creatorId":"`+creatorID+`"}`, "fan-token")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"fan1"`)

	rec = env.do("POST", "/api/favorites", `{"creatorId":"not-a-uuid"}`, "fan-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do("DELETE", "/api/favorites/"+creatorID, "", "fan-token")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "fan1/"+creatorID, removed)

	rec = env.do("GET", "/api/favorites", "", "fan-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_FavoriteConflict(t *testing.T) {
	env := newTestEnv()
	env.favs.AddFunc = func(context.Context, string, string) (models.Favorite, error) {
		return models.Favorite{}, repository.ErrConflict
	}
	rec := env.do("POST", "/api/favorites", `{"creatorId":"`+creatorID+`"}`, "fan-token")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_LatestApproved(t *testing.T) {
	env := newTestEnv()
	env.apps.LatestFunc = func(ctx context.Context, userID string) (models.CreatorApplication, error) {
		if userID == "boss" {
			return models.CreatorApplication{ID: "a1", UserID: userID, DisplayName: "Ava", Status: models.StatusApproved}, nil
		}
		return models.CreatorApplication{}, repository.ErrNotFound
	}

	assert.Equal(t, http.StatusNotFound, env.do("GET", "/api/creator-applications/latest-approved", "", "fan-token").Code)

	rec := env.do("GET", "/api/creator-applications/latest-approved", "", "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"displayName":"Ava"`)
}

func TestRouter_SubmitApplication(t *testing.T) {
	env := newTestEnv()
	env.apps.SubmitFunc = func(ctx context.Context, userID string, app models.CreatorApplication) (models.CreatorApplication, error) {
		app.ID, app.UserID, app.Status = "a1", userID, models.StatusPending
		return app, nil
	}

	rec := env.do("POST", "/api/creator-applications",
		`{"displayName":"Ava","category":"music","countryCode":"US","priceCents":2500}`, "fan-token")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)

	rec = env.do("POST", "/api/creator-applications", `{"category":"music"}`, "fan-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AdminReview(t *testing.T) {
	env := newTestEnv()
	env.apps.ReviewFunc = func(ctx context.Context, id string, status models.ApplicationStatus) (models.CreatorApplication, error) {
		if !status.Valid() {
			return models.CreatorApplication{}, service.ErrInvalidStatus
		}
		return models.CreatorApplication{ID: id, Status: status}, nil
	}

	target := "/api/admin/creator-applications/" + applicationID
	assert.Equal(t, http.StatusForbidden, env.do("PATCH", target, `{"status":"approved"}`, "fan-token").Code)

	rec := env.do("PATCH", target, `{"status":"approved"}`, "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"`+applicationID+`"`)

	assert.Equal(t, http.StatusBadRequest, env.do("PATCH", target, `{"status":"maybe"}`, "admin-token").Code)
	assert.Equal(t, http.StatusBadRequest, env.do("PATCH", "/api/admin/creator-applications/a1", `{"status":"approved"}`, "admin-token").Code)
}

func TestRouter_RateVideo(t *testing.T) {
	env := newTestEnv()
	env.videos.RateFunc = func(ctx context.Context, fanID, id string, rating int) error {
		switch {
		case rating < 1 || rating > 5:
			return service.ErrInvalidRating
		case id != videoID:
			return repository.ErrNotFound
		}
		return nil
	}

	assert.Equal(t, http.StatusNoContent, env.do("PUT", "/api/video-requests/"+videoID+"/rating", `{"rating":4}`, "fan-token").Code)
	assert.Equal(t, http.StatusBadRequest, env.do("PUT", "/api/video-requests/"+videoID+"/rating", `{"rating":9}`, "fan-token").Code)
	assert.Equal(t, http.StatusNotFound, env.do("PUT", "/api/video-requests/"+otherVideoID+"/rating", `{"rating":4}`, "fan-token").Code)
}

func TestRouter_MalformedPathIDs(t *testing.T) {
	env := newTestEnv()
	called := false
	env.favs.RemoveFunc = func(context.Context, string, string) error { called = true; return nil }
	env.videos.RateFunc = func(context.Context, string, string, int) error { called = true; return nil }

	rec := env.do("DELETE", "/api/favorites/not-a-uuid", "", "fan-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid creatorId")

	rec = env.do("PUT", "/api/video-requests/vr1/rating", `{"rating":4}`, "fan-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid id")

	assert.False(t, called, "malformed ids must not reach the services")
}

func TestRouter_VideoRequests(t *testing.T) {
	env := newTestEnv()
	env.videos.CreateFunc = func(ctx context.Context, fanID string, vr models.VideoRequest) (models.VideoRequest, error) {
		vr.ID, vr.FanID, vr.Status = "vr1", fanID, "pending"
		return vr, nil
	}
	env.videos.ListFunc = func(ctx context.Context, fanID string) ([]models.VideoRequest, error) {
		return []models.VideoRequest{{ID: "vr1", FanID: fanID}}, nil
	}

	rec := env.do("POST", "/api/video-requests", `{"creatorId":"`+creatorID+`","occasion":"birthday"}`, "fan-token")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fanId":"fan1"`)

	assert.Equal(t, http.StatusBadRequest, env.do("POST", "/api/video-requests", `{"creatorId":"`+creatorID+`"}`, "fan-token").Code)

	rec = env.do("GET", "/api/video-requests", "", "fan-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"vr1"`)
}

func TestRouter_Catalog(t *testing.T) {
	env := newTestEnv()
	var got repository.CreatorFilter
	env.cat.CreatorsFunc = func(ctx context.Context, f repository.CreatorFilter) ([]models.Creator, error) {
		got = f
		return []models.Creator{{
			CreatorApplication: models.CreatorApplication{ID: "c1", DisplayName: "Ava"},
			AverageRating:      4.5,
			RatingCount:        2,
		}}, nil
	}
	env.cat.CountriesFunc = func(ctx context.Context) ([]models.Country, error) {
		return nil, errors.New("db down")
	}

	rec := env.do("GET", "/api/creators?q=ava&category=music&limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repository.CreatorFilter{Query: "ava", Category: "music", Limit: 5}, got)
	assert.Contains(t, rec.Body.String(), `"averageRating":4.5`)
	assert.Contains(t, rec.Body.String(), `"displayName":"Ava"`)

	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/api/creators?limit=lots", "", "").Code)
	assert.Equal(t, http.StatusInternalServerError, env.do("GET", "/api/countries", "", "").Code)
}

func TestRouter_NotifyContentTypeIs400(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest("POST", "/api/send-video-notification", strings.NewReader(`{"fanEmail":"a","videoUrl":"b"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do("POST", "/api/send-video-notification", `{"fanEmail":"a@b.co","videoUrl":"https://v","requestId":"r1"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requestId":"r1"`)
}

func TestRouter_JSONOnly(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader("email=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_Preflight(t *testing.T) {
	env := newTestEnv()
	for _, target := range []string{"/api/favorites", "/api/send-video-notification"} {
		req := httptest.NewRequest(http.MethodOptions, target, nil)
		req.Header.Set("Origin", "https://vlinky.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code, target)
		assert.Equal(t, "https://vlinky.com", rec.Header().Get("Access-Control-Allow-Origin"), target)
		assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"), target)
	}
}

func TestRouter_NotifyErrorsCarryCORS(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest(http.MethodGet, "/api/send-video-notification", nil)
	req.Header.Set("Origin", "https://vlinky.com")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "https://vlinky.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv()
	assert.Equal(t, http.StatusOK, env.do("GET", "/healthz", "", "").Code)

	env.db.err = errors.New("gone")
	assert.Equal(t, http.StatusServiceUnavailable, env.do("GET", "/healthz", "", "").Code)
}

func TestRouter_RealtimeStream(t *testing.T) {
	env := newTestEnv()
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/realtime/creator-applications", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer fan-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": subscribed\n", line)

	env.hub.Publish(models.ChangeEvent{Table: "creator_applications", Op: "UPDATE", ID: "other", UserID: "someone"})
	env.hub.Publish(models.ChangeEvent{Table: "creator_applications", Op: "UPDATE", ID: "a1", UserID: "fan1", Status: "approved"})

	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if after, ok := strings.CutPrefix(line, "data: "); ok {
			data = strings.TrimSpace(after)
		}
	}
	assert.JSONEq(t, `{"table":"creator_applications","op":"UPDATE","id":"a1","user_id":"fan1","status":"approved"}`, data)
}

func TestRouter_RealtimeStreamEndsWithServerContext(t *testing.T) {
	env := newTestEnv()
	base, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	srv := httptest.NewUnstartedServer(env.router)
	srv.Config.BaseContext = func(net.Listener) context.Context { return base }
	srv.Start()
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/realtime/creator-applications", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer fan-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": subscribed\n", line)

	shutdown()
	_, err = io.ReadAll(reader)
	require.NoError(t, err, "stream should end cleanly once the server context is cancelled")
	assert.NoError(t, ctx.Err())
	assert.Eventually(t, func() bool { return env.hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
