// Package auth implements registration, login and identity lookup.
package auth

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/model"
	"taskboard/pkg/metrics"
	"taskboard/pkg/util"
)

// UserStore is the persistence surface the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type Service struct {
	users     UserStore
	jwtSecret string
}

func NewService(users UserStore, jwtSecret string) *Service {
	return &Service{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user and returns it with a fresh token.
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", model.ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", model.ErrInvalidInput)
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		metrics.IncrementAuthAttempt("register", "failed")
		return nil, "", model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, "", err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		metrics.IncrementAuthAttempt("register", "failed")
		return nil, "", err
	}

	token, err := util.GenerateJWT(u.ID, u.Email, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	metrics.IncrementAuthAttempt("register", "success")
	return u, token, nil
}

// Login checks credentials and returns the user with a fresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", model.ErrInvalidInput)
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			metrics.IncrementAuthAttempt("login", "failed")
			return nil, "", model.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		metrics.IncrementAuthAttempt("login", "failed")
		return nil, "", model.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(u.ID, u.Email, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	metrics.IncrementAuthAttempt("login", "success")
	return u, token, nil
}

// CurrentUser resolves a verified token's user id to the stored user.
func (s *Service) CurrentUser(ctx context.Context, userID int) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}
