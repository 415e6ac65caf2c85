package auth

import "context"

// Repository is the credential store. Implementations translate storage
// errors into apperror types: a username uniqueness violation becomes a
// ConflictError, a missing row a NotFoundError, anything else a
// DatabaseError.
type Repository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}
