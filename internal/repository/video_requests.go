package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vlinky/vlinky/internal/format"
	"github.com/vlinky/vlinky/internal/models"
)

const videoRequestColumns = `id, fan_id, creator_id, occasion, instructions, status,
	video_url, rating, rated_at, created_at`

// PostgresVideoRequestsRepository stores video_requests rows.
type PostgresVideoRequestsRepository struct {
	DB *sql.DB
}

// NewPostgresVideoRequestsRepository creates a video request repository on db.
func NewPostgresVideoRequestsRepository(db *sql.DB) *PostgresVideoRequestsRepository {
	return &PostgresVideoRequestsRepository{DB: db}
}

func scanVideoRequest(s rowScanner) (models.VideoRequest, error) {
	var (
		vr      models.VideoRequest
		rating  sql.NullInt64
		ratedAt sql.NullTime
	)
	err := s.Scan(&vr.ID, &vr.FanID, &vr.CreatorID, &vr.Occasion, &vr.Instructions, &vr.Status,
		&vr.VideoURL, &rating, &ratedAt, &vr.CreatedAt)
	if err != nil {
		return models.VideoRequest{}, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		vr.Rating = &v
	}
	if ratedAt.Valid {
		t := ratedAt.Time
		vr.RatedAt = &t
	}
	return vr, nil
}

// CreateVideoRequest stores a new pending request from vr.FanID.
func (r *PostgresVideoRequestsRepository) CreateVideoRequest(ctx context.Context, vr models.VideoRequest) (models.VideoRequest, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO video_requests (fan_id, creator_id, occasion, instructions)
		VALUES ($1, $2, $3, $4)
		RETURNING `+videoRequestColumns,
		vr.FanID, vr.CreatorID, vr.Occasion, vr.Instructions,
	)
	created, err := scanVideoRequest(row)
	if err != nil {
		return models.VideoRequest{}, fmt.Errorf("create video request: %w", classify(err))
	}
	return created, nil
}

// ListByFan returns the fan's requests, newest first.
func (r *PostgresVideoRequestsRepository) ListByFan(ctx context.Context, fanID string) ([]models.VideoRequest, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+videoRequestColumns+` FROM video_requests
		WHERE fan_id = $1 ORDER BY created_at DESC
	`, fanID)
	if err != nil {
		return nil, fmt.Errorf("list video requests: %w", err)
	}
	defer rows.Close()

	out := []models.VideoRequest{}
	for rows.Next() {
		vr, err := scanVideoRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video request: %w", err)
		}
		out = append(out, vr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video requests: %w", err)
	}
	return out, nil
}

// SetRating overwrites the rating of request id owned by fanID.
// ErrNotFound is returned when no such request belongs to the fan.
func (r *PostgresVideoRequestsRepository) SetRating(ctx context.Context, fanID, id string, rating int, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE video_requests SET rating = $1, rated_at = $2
		WHERE id = $3 AND fan_id = $4
	`, rating, at, id, fanID)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set rating: %w", ErrNotFound)
	}
	return nil
}

// RatingsByCreators returns every request's rating, nil when unrated,
// grouped by creator id.
func (r *PostgresVideoRequestsRepository) RatingsByCreators(ctx context.Context, creatorIDs []string) (map[string][]format.RatedEntry, error) {
	out := make(map[string][]format.RatedEntry, len(creatorIDs))
	if len(creatorIDs) == 0 {
		return out, nil
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT creator_id, rating FROM video_requests WHERE creator_id = ANY($1)
	`, pq.Array(creatorIDs))
	if err != nil {
		return nil, fmt.Errorf("ratings by creators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			creatorID string
			rating    sql.NullInt64
		)
		if err := rows.Scan(&creatorID, &rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		entry := format.RatedEntry{}
		if rating.Valid {
			v := int(rating.Int64)
			entry.Rating = &v
		}
		out[creatorID] = append(out[creatorID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}
