// Package repository provides PostgreSQL persistence for users, sessions,
// favorites, creator applications, video requests and countries.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vlinky/vlinky/internal/models"
)

// PostgresAuthRepository stores users and their login sessions.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts a user and returns it with its generated id and role.
// A duplicate email yields ErrConflict.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, email string, passwordHash []byte) (models.User, error) {
	u := models.User{Email: email, PasswordHash: passwordHash}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, role`,
		email, passwordHash,
	).Scan(&u.ID, &u.Role)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", classify(err))
	}
	return u, nil
}

// GetUserByEmail looks a user up by login email.
func (r *PostgresAuthRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", classify(err))
	}
	return u, nil
}

// GetUserByID looks a user up by id.
func (r *PostgresAuthRepository) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		return models.User{}, fmt.Errorf("get user by id: %w", classify(err))
	}
	return u, nil
}

// CreateSession stores a new login session.
func (r *PostgresAuthRepository) CreateSession(ctx context.Context, s models.Session) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		s.Token, s.UserID, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", classify(err))
	}
	return nil
}

// GetSession returns the session for token, expired or not.
func (r *PostgresAuthRepository) GetSession(ctx context.Context, token string) (models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at FROM sessions WHERE token = $1`,
		token,
	).Scan(&s.Token, &s.UserID, &s.ExpiresAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("get session: %w", classify(err))
	}
	return s, nil
}

// DeleteSession removes token. Deleting an unknown token is not an error.
func (r *PostgresAuthRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
