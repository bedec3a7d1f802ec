// Package service provides business logic for authentication, favorites,
// creator applications, video requests and the public catalog, delegating
// persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vlinky/vlinky/internal/models"
	"github.com/vlinky/vlinky/internal/repository"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	CreateUser(ctx context.Context, email string, passwordHash []byte) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Service implements authentication operations by delegating
// to an AuthRepository.
type Service struct {
	repo       AuthRepository
	sessionTTL time.Duration
	// hashCost is the bcrypt cost used for new passwords.
	hashCost int
	now      func() time.Time
}

// NewAuthService constructs a new Service issuing sessions valid for sessionTTL.
func NewAuthService(repo AuthRepository, sessionTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Register creates an account and logs it in.
// A taken email yields repository.ErrConflict.
func (s *Service) Register(ctx context.Context, email, password string) (models.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return models.Session{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, email, hash)
	if err != nil {
		return models.Session{}, err
	}
	return s.issue(ctx, user.ID)
}

// Login checks the password and issues a new session.
func (s *Service) Login(ctx context.Context, email, password string) (models.Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	return s.issue(ctx, user.ID)
}

func (s *Service) issue(ctx context.Context, userID string) (models.Session, error) {
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

// Authenticate resolves a bearer token to its user id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if _, err := uuid.Parse(token); err != nil {
		return "", ErrUnauthenticated
	}
	session, err := s.repo.GetSession(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", err
	}
	if !session.ExpiresAt.After(s.now()) {
		return "", ErrSessionExpired
	}
	return session.UserID, nil
}

// Logout ends the session for token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}

// User returns the account for id.
func (s *Service) User(ctx context.Context, id string) (models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// IsAdmin reports whether the user has the admin role.
func (s *Service) IsAdmin(ctx context.Context, id string) (bool, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.Role == models.RoleAdmin, nil
}
