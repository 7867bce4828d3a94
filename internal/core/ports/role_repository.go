package ports

import (
	"context"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// RoleRepository is the role store.
type RoleRepository interface {
	// Create returns domain.ErrRoleExists on a duplicate name.
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	// FindByID returns domain.ErrRoleNotFound when the reference dangles.
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Update(ctx context.Context, id string, upd domain.RoleUpdate) (*domain.Role, error)
	// AddPermissions unions perms into the stored set.
	AddPermissions(ctx context.Context, id string, perms []string) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
}

// PermissionCache caches resolved roles keyed by role ID.
type PermissionCache interface {
	Get(ctx context.Context, roleID string) (*domain.Role, bool, error)
	// Set stores role unless an invalidation has already fenced out its
	// version.
	Set(ctx context.Context, role *domain.Role) error
	// Invalidate drops the entry for roleID and rejects any later Set
	// carrying a version below minVersion.
	Invalidate(ctx context.Context, roleID string, minVersion int64) error
}
