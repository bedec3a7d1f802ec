package service

import (
	"context"

	"github.com/vlinky/vlinky/internal/models"
)

// ApplicationsRepository defines the persistence operations needed by ApplicationsService.
type ApplicationsRepository interface {
	CreateApplication(ctx context.Context, app models.CreatorApplication) (models.CreatorApplication, error)
	LatestApproved(ctx context.Context, userID string) (models.CreatorApplication, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (models.CreatorApplication, error)
}

// ApplicationsService handles creator onboarding and review.
type ApplicationsService struct {
	repo ApplicationsRepository
}

// NewApplicationsService constructs an ApplicationsService.
func NewApplicationsService(repo ApplicationsRepository) *ApplicationsService {
	return &ApplicationsService{repo: repo}
}

// Submit stores a pending application for userID. Caller-supplied id and
// status are ignored.
func (s *ApplicationsService) Submit(ctx context.Context, userID string, app models.CreatorApplication) (models.CreatorApplication, error) {
	app.ID = ""
	app.UserID = userID
	app.Status = models.StatusPending
	return s.repo.CreateApplication(ctx, app)
}

// LatestApproved returns the user's most recent approved application.
// repository.ErrNotFound means there is none.
func (s *ApplicationsService) LatestApproved(ctx context.Context, userID string) (models.CreatorApplication, error) {
	return s.repo.LatestApproved(ctx, userID)
}

// Review sets the status of an application. The database trigger turns
// the update into a realtime change event for the applicant.
func (s *ApplicationsService) Review(ctx context.Context, id string, status models.ApplicationStatus) (models.CreatorApplication, error) {
	if !status.Valid() {
		return models.CreatorApplication{}, ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
