package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthRepository defines the user and refresh token operations the auth
// service depends on.
type AuthRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, role string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	ListUsers(ctx context.Context) ([]User, error)

	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

var _ AuthRepository = (*Repository)(nil)
