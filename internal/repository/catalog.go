package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vlinky/vlinky/internal/models"
)

// PostgresCatalogRepository serves static reference data.
type PostgresCatalogRepository struct {
	DB *sql.DB
}

// NewPostgresCatalogRepository creates a catalog repository on db.
func NewPostgresCatalogRepository(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{DB: db}
}

// ListCountries returns all countries ordered by name.
func (r *PostgresCatalogRepository) ListCountries(ctx context.Context) ([]models.Country, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT code, name, flag_emoji FROM countries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	countries := []models.Country{}
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.Code, &c.Name, &c.FlagEmoji); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}
	return countries, nil
}

// CatalogReader bundles the reads behind creator discovery.
type CatalogReader struct {
	*PostgresCatalogRepository
	*PostgresApplicationsRepository
	*PostgresVideoRequestsRepository
}

// NewCatalogReader builds a CatalogReader over db.
func NewCatalogReader(db *sql.DB) *CatalogReader {
	return &CatalogReader{
		PostgresCatalogRepository:       NewPostgresCatalogRepository(db),
		PostgresApplicationsRepository:  NewPostgresApplicationsRepository(db),
		PostgresVideoRequestsRepository: NewPostgresVideoRequestsRepository(db),
	}
}
