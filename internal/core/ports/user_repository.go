package ports

import (
	"context"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// UserRepository is the identity store.
type UserRepository interface {
	// Create inserts a user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when email or phone is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound when no such user exists.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
	// CountByRole reports how many users reference roleID.
	CountByRole(ctx context.Context, roleID string) (int64, error)
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}
