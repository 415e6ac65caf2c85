// Package auth implements registration, login and the signed-cookie session
// that gates the authenticated routes.
package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/pestguard-go/apperror"
)

// invalidCredentialsMessage is returned for both an unknown username and a
// wrong password so login failures do not reveal which accounts exist.
const invalidCredentialsMessage = "Invalid Credentials"

// Service provides registration and credential verification.
type Service struct {
	repo Repository
}

// NewService creates an auth Service backed by the given credential store.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new user with a bcrypt-hashed password. A taken
// username surfaces as a ConflictError; other store failures keep their own
// type and are never reported as a duplicate.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperror.NewValidationError("username, email and password are required", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:       username,
		Email:          strings.ToLower(email),
		HashedPassword: string(hashed),
	}
	return s.repo.CreateUser(ctx, user)
}

// Login verifies the username and password and returns the user. Unknown
// usernames and wrong passwords produce the identical AuthError.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError(invalidCredentialsMessage, nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, apperror.NewAuthError(invalidCredentialsMessage, nil)
	}
	return user, nil
}
