package service

import (
	"context"

	"github.com/vlinky/vlinky/internal/format"
	"github.com/vlinky/vlinky/internal/models"
	"github.com/vlinky/vlinky/internal/repository"
)

const (
	defaultCreatorLimit = 24
	maxCreatorLimit     = 100
	// unratedAverage is shown for creators without any rated request.
	unratedAverage = 0
)

// CatalogRepository defines the read operations behind discovery.
type CatalogRepository interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
	ListApproved(ctx context.Context, f repository.CreatorFilter) ([]models.CreatorApplication, error)
	RatingsByCreators(ctx context.Context, creatorIDs []string) (map[string][]format.RatedEntry, error)
}

// CatalogService serves the public countries list and creator discovery.
type CatalogService struct {
	repo CatalogRepository
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// Countries returns all countries ordered by name.
func (s *CatalogService) Countries(ctx context.Context) ([]models.Country, error) {
	return s.repo.ListCountries(ctx)
}

// Creators lists approved creators matching f, each with its average rating.
func (s *CatalogService) Creators(ctx context.Context, f repository.CreatorFilter) ([]models.Creator, error) {
	if f.Limit <= 0 {
		f.Limit = defaultCreatorLimit
	}
	if f.Limit > maxCreatorLimit {
		f.Limit = maxCreatorLimit
	}

	apps, err := s.repo.ListApproved(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ID)
	}
	ratings, err := s.repo.RatingsByCreators(ctx, ids)
	if err != nil {
		return nil, err
	}

	creators := make([]models.Creator, 0, len(apps))
	for _, a := range apps {
		entries := ratings[a.ID]
		creators = append(creators, models.Creator{
			CreatorApplication: a,
			AverageRating:      format.CalculateAverageRating(entries, unratedAverage),
			RatingCount:        format.CountRated(entries),
		})
	}
	return creators, nil
}
