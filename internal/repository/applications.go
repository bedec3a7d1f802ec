package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vlinky/vlinky/internal/models"
)

const applicationColumns = `id, user_id, display_name, category, bio, avatar_url,
	COALESCE(country_code, ''), price_cents, status, created_at, updated_at`

// CreatorFilter narrows the discovery listing.
type CreatorFilter struct {
	// Query matches display names case-insensitively; empty matches all.
	Query string
	// Category must match exactly; empty matches all.
	Category string
	// Limit caps the number of rows.
	Limit int
}

// PostgresApplicationsRepository stores creator_applications rows.
type PostgresApplicationsRepository struct {
	DB *sql.DB
}

// NewPostgresApplicationsRepository creates an applications repository on db.
func NewPostgresApplicationsRepository(db *sql.DB) *PostgresApplicationsRepository {
	return &PostgresApplicationsRepository{DB: db}
}

func scanApplication(s rowScanner) (models.CreatorApplication, error) {
	var a models.CreatorApplication
	err := s.Scan(&a.ID, &a.UserID, &a.DisplayName, &a.Category, &a.Bio, &a.AvatarURL,
		&a.CountryCode, &a.PriceCents, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// CreateApplication stores a new pending application for app.UserID.
func (r *PostgresApplicationsRepository) CreateApplication(ctx context.Context, app models.CreatorApplication) (models.CreatorApplication, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO creator_applications
			(user_id, display_name, category, bio, avatar_url, country_code, price_cents)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		RETURNING `+applicationColumns,
		app.UserID, app.DisplayName, app.Category, app.Bio, app.AvatarURL, app.CountryCode, app.PriceCents,
	)
	created, err := scanApplication(row)
	if err != nil {
		return models.CreatorApplication{}, fmt.Errorf("create application: %w", classify(err))
	}
	return created, nil
}

// LatestApproved returns the most recent approved application of userID,
// or ErrNotFound when the user has none.
func (r *PostgresApplicationsRepository) LatestApproved(ctx context.Context, userID string) (models.CreatorApplication, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+applicationColumns+` FROM creator_applications
		WHERE user_id = $1 AND status = 'approved'
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
	app, err := scanApplication(row)
	if err != nil {
		return models.CreatorApplication{}, fmt.Errorf("latest approved application: %w", classify(err))
	}
	return app, nil
}

// UpdateStatus sets the review status of application id.
func (r *PostgresApplicationsRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (models.CreatorApplication, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE creator_applications SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+applicationColumns,
		status, id,
	)
	app, err := scanApplication(row)
	if err != nil {
		return models.CreatorApplication{}, fmt.Errorf("update application status: %w", classify(err))
	}
	return app, nil
}

// ListApproved returns approved applications matching f, ordered by name.
func (r *PostgresApplicationsRepository) ListApproved(ctx context.Context, f CreatorFilter) ([]models.CreatorApplication, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM creator_applications
		WHERE status = 'approved'
		  AND ($1 = '' OR display_name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
		ORDER BY display_name
		LIMIT $3
	`, f.Query, f.Category, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("list approved applications: %w", err)
	}
	defer rows.Close()

	apps := []models.CreatorApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}
