package ports

import (
	"context"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// RoleService covers administrator role management.
type RoleService interface {
	List(ctx context.Context) ([]*domain.Role, error)
	Get(ctx context.Context, id string) (*domain.Role, error)
	Create(ctx context.Context, actor Actor, name string, perms []string) (*domain.Role, error)
	Update(ctx context.Context, actor Actor, id string, upd domain.RoleUpdate) (*domain.Role, error)
	Delete(ctx context.Context, actor Actor, id string) error
	AssignPermissions(ctx context.Context, actor Actor, id string, perms []string) (*domain.Role, error)
	// SeedDefaults creates the built-in roles that are missing and returns
	// the names it created.
	SeedDefaults(ctx context.Context) ([]string, error)
}
