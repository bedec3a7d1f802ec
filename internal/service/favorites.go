package service

import (
	"context"

	"github.com/vlinky/vlinky/internal/models"
)

// FavoritesRepository defines the persistence operations needed by FavoritesService.
type FavoritesRepository interface {
	ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, userID, creatorID string) (models.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, creatorID string) error
}

// FavoritesService manages the user_favorites pairs of a user.
type FavoritesService struct {
	repo FavoritesRepository
}

// NewFavoritesService constructs a FavoritesService.
func NewFavoritesService(repo FavoritesRepository) *FavoritesService {
	return &FavoritesService{repo: repo}
}

// List returns the user's favorites.
func (s *FavoritesService) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	return s.repo.ListFavorites(ctx, userID)
}

// Add stores a favorite and returns the created row.
func (s *FavoritesService) Add(ctx context.Context, userID, creatorID string) (models.Favorite, error) {
	return s.repo.AddFavorite(ctx, userID, creatorID)
}

// Remove deletes a favorite.
func (s *FavoritesService) Remove(ctx context.Context, userID, creatorID string) error {
	return s.repo.RemoveFavorite(ctx, userID, creatorID)
}
