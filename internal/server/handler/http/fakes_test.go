package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/vlinky/vlinky/internal/middleware"
	"github.com/vlinky/vlinky/internal/models"
	"github.com/vlinky/vlinky/internal/repository"
)

type fakeAuthService struct {
	RegisterFunc func(ctx context.Context, email, password string) (models.Session, error)
	LoginFunc    func(ctx context.Context, email, password string) (models.Session, error)
	LogoutFunc   func(ctx context.Context, token string) error
	UserFunc     func(ctx context.Context, id string) (models.User, error)
}

func (f *fakeAuthService) Register(ctx context.Context, email, password string) (models.Session, error) {
	return f.RegisterFunc(ctx, email, password)
}
func (f *fakeAuthService) Login(ctx context.Context, email, password string) (models.Session, error) {
	return f.LoginFunc(ctx, email, password)
}
func (f *fakeAuthService) Logout(ctx context.Context, token string) error {
	return f.LogoutFunc(ctx, token)
}
func (f *fakeAuthService) User(ctx context.Context, id string) (models.User, error) {
	return f.UserFunc(ctx, id)
}

type fakeFavoritesService struct {
	ListFunc   func(ctx context.Context, userID string) ([]models.Favorite, error)
	AddFunc    func(ctx context.Context, userID, creatorID string) (models.Favorite, error)
	RemoveFunc func(ctx context.Context, userID, creatorID string) error
}

func (f *fakeFavoritesService) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	return f.ListFunc(ctx, userID)
}
func (f *fakeFavoritesService) Add(ctx context.Context, userID, creatorID string) (models.Favorite, error) {
	return f.AddFunc(ctx, userID, creatorID)
}
func (f *fakeFavoritesService) Remove(ctx context.Context, userID, creatorID string) error {
	return f.RemoveFunc(ctx, userID, creatorID)
}

type fakeApplicationsService struct {
	SubmitFunc func(ctx context.Context, userID string, app models.CreatorApplication) (models.CreatorApplication, error)
	LatestFunc func(ctx context.Context, userID string) (models.CreatorApplication, error)
	ReviewFunc func(ctx context.Context, id string, status models.ApplicationStatus) (models.CreatorApplication, error)
}

func (f *fakeApplicationsService) Submit(ctx context.Context, userID string, app models.CreatorApplication) (models.CreatorApplication, error) {
	return f.SubmitFunc(ctx, userID, app)
}
func (f *fakeApplicationsService) LatestApproved(ctx context.Context, userID string) (models.CreatorApplication, error) {
	return f.LatestFunc(ctx, userID)
}
func (f *fakeApplicationsService) Review(ctx context.Context, id string, status models.ApplicationStatus) (models.CreatorApplication, error) {
	return f.ReviewFunc(ctx, id, status)
}

type fakeVideoRequestsService struct {
	CreateFunc func(ctx context.Context, fanID string, vr models.VideoRequest) (models.VideoRequest, error)
	ListFunc   func(ctx context.Context, fanID string) ([]models.VideoRequest, error)
	RateFunc   func(ctx context.Context, fanID, requestID string, rating int) error
}

func (f *fakeVideoRequestsService) Create(ctx context.Context, fanID string, vr models.VideoRequest) (models.VideoRequest, error) {
	return f.CreateFunc(ctx, fanID, vr)
}
func (f *fakeVideoRequestsService) List(ctx context.Context, fanID string) ([]models.VideoRequest, error) {
	return f.ListFunc(ctx, fanID)
}
func (f *fakeVideoRequestsService) Rate(ctx context.Context, fanID, requestID string, rating int) error {
	return f.RateFunc(ctx, fanID, requestID, rating)
}

type fakeCatalogService struct {
	CountriesFunc func(ctx context.Context) ([]models.Country, error)
	CreatorsFunc  func(ctx context.Context, f repository.CreatorFilter) ([]models.Creator, error)
}

func (f *fakeCatalogService) Countries(ctx context.Context) ([]models.Country, error) {
	return f.CountriesFunc(ctx)
}
func (f *fakeCatalogService) Creators(ctx context.Context, filter repository.CreatorFilter) ([]models.Creator, error) {
	return f.CreatorsFunc(ctx, filter)
}

// jsonRequest builds a request carrying body and, when userID is set,
// an authenticated user in its context.
func jsonRequest(method, target, body, userID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}
