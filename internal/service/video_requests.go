package service

import (
	"context"
	"time"

	"github.com/vlinky/vlinky/internal/models"
)

// VideoRequestsRepository defines the persistence operations needed by VideoRequestsService.
type VideoRequestsRepository interface {
	CreateVideoRequest(ctx context.Context, vr models.VideoRequest) (models.VideoRequest, error)
	ListByFan(ctx context.Context, fanID string) ([]models.VideoRequest, error)
	SetRating(ctx context.Context, fanID, id string, rating int, at time.Time) error
}

// VideoRequestsService handles fan orders and their ratings.
type VideoRequestsService struct {
	repo VideoRequestsRepository
	now  func() time.Time
}

// NewVideoRequestsService constructs a VideoRequestsService.
func NewVideoRequestsService(repo VideoRequestsRepository) *VideoRequestsService {
	return &VideoRequestsService{repo: repo, now: time.Now}
}

// Create places an order from fanID.
func (s *VideoRequestsService) Create(ctx context.Context, fanID string, vr models.VideoRequest) (models.VideoRequest, error) {
	vr.FanID = fanID
	return s.repo.CreateVideoRequest(ctx, vr)
}

// List returns the fan's orders.
func (s *VideoRequestsService) List(ctx context.Context, fanID string) ([]models.VideoRequest, error) {
	return s.repo.ListByFan(ctx, fanID)
}

// Rate overwrites the rating of one of the fan's orders.
func (s *VideoRequestsService) Rate(ctx context.Context, fanID, requestID string, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return s.repo.SetRating(ctx, fanID, requestID, rating, s.now())
}
