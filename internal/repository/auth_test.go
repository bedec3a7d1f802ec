package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/vlinky/vlinky/internal/models"
)

func setupAuthMock(t *testing.T) (*PostgresAuthRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresAuthRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	hash := []byte("hash")
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, role`)).
		WithArgs("fan@vlinky.com", hash).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow("u1", "fan"))

	u, err := repo.CreateUser(context.Background(), "fan@vlinky.com", hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u1" || u.Role != "fan" || u.Email != "fan@vlinky.com" {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	_, err := repo.CreateUser(context.Background(), "fan@vlinky.com", []byte("h"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, password_hash, role FROM users WHERE email = $1`)).
		WithArgs("ghost@vlinky.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role"}))

	_, err := repo.GetUserByEmail(context.Background(), "ghost@vlinky.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUserByID_Success(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs("u9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role"}).
			AddRow("u9", "admin@vlinky.com", []byte("h"), "admin"))

	u, err := repo.GetUserByID(context.Background(), "u9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role = %q; want admin", u.Role)
	}
}

func TestSessionLifecycle(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := models.Session{Token: "tok", UserID: "u1", ExpiresAt: exp}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`)).
		WithArgs("tok", "u1", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT token, user_id, expires_at FROM sessions WHERE token = $1`)).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at"}).AddRow("tok", "u1", exp))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE token = $1`)).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	if err := repo.CreateSession(ctx, s); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	got, err := repo.GetSession(ctx, "tok")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != s {
		t.Errorf("GetSession = %+v; want %+v", got, s)
	}
	if err := repo.DeleteSession(ctx, "tok"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions WHERE token = $1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at"}))

	if _, err := repo.GetSession(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
