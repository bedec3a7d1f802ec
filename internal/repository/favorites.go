package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vlinky/vlinky/internal/models"
)

// PostgresFavoritesRepository stores user_favorites rows.
type PostgresFavoritesRepository struct {
	DB *sql.DB
}

// NewPostgresFavoritesRepository creates a favorites repository on db.
func NewPostgresFavoritesRepository(db *sql.DB) *PostgresFavoritesRepository {
	return &PostgresFavoritesRepository{DB: db}
}

// ListFavorites returns the user's favorites, newest first.
func (r *PostgresFavoritesRepository) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, creator_id, created_at FROM user_favorites
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.CreatorID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return favorites, nil
}

// AddFavorite inserts the (user, creator) pair and returns the stored row.
// The pair is unique; a second insert yields ErrConflict, and an unknown
// creator yields ErrNotFound.
func (r *PostgresFavoritesRepository) AddFavorite(ctx context.Context, userID, creatorID string) (models.Favorite, error) {
	var f models.Favorite
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO user_favorites (user_id, creator_id) VALUES ($1, $2)
		RETURNING id, user_id, creator_id, created_at
	`, userID, creatorID).Scan(&f.ID, &f.UserID, &f.CreatorID, &f.CreatedAt)
	if err != nil {
		return models.Favorite{}, fmt.Errorf("add favorite: %w", classify(err))
	}
	return f, nil
}

// RemoveFavorite deletes the (user, creator) pair. Removing a pair that is
// not stored succeeds.
func (r *PostgresFavoritesRepository) RemoveFavorite(ctx context.Context, userID, creatorID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM user_favorites WHERE user_id = $1 AND creator_id = $2`,
		userID, creatorID,
	)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}
