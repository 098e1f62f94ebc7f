package auth

import (
	"context"

	"inkbook/internal/domain"
)

// UserRepository is the storage surface for account lookup and
// creation.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}
