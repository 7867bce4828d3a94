package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// RoleService manages roles and keeps the permission cache coherent with
// the role store.
type RoleService struct {
	roles ports.RoleRepository
	users ports.UserRepository
	cache ports.PermissionCache
	audit auditRecorder
	log   zerolog.Logger
}

// NewRoleService returns a RoleService. cache may be nil.
func NewRoleService(
	roles ports.RoleRepository,
	users ports.UserRepository,
	cache ports.PermissionCache,
	audit ports.AuditRepository,
	log zerolog.Logger,
) *RoleService {
	return &RoleService{
		roles: roles,
		users: users,
		cache: cache,
		audit: newAuditRecorder(audit, log),
		log:   log,
	}
}

func (s *RoleService) List(ctx context.Context) ([]*domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *RoleService) Get(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

func (s *RoleService) Create(ctx context.Context, actor ports.Actor, name string, perms []string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation(domain.ErrInvalidInput)
	}
	role, err := s.roles.Create(ctx, &domain.Role{Name: name, Permissions: domain.NormalizePermissions(perms)})
	if errors.Is(err, domain.ErrRoleExists) {
		return nil, domain.Conflict(err)
	}
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.record(ctx, actor, domain.AuditCreate, fmt.Sprintf("Role '%s' created", role.Name), role)
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, actor ports.Actor, id string, upd domain.RoleUpdate) (*domain.Role, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, domain.Validation(domain.ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Permissions != nil {
		upd.Permissions = domain.NormalizePermissions(upd.Permissions)
	}
	role, err := s.roles.Update(ctx, id, upd)
	if errors.Is(err, domain.ErrRoleExists) {
		return nil, domain.Conflict(err)
	}
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.invalidate(ctx, id, role.Version)
	s.record(ctx, actor, domain.AuditUpdate, fmt.Sprintf("Role '%s' updated", role.Name), role)
	return role, nil
}

// Delete removes a role that no user references.
func (s *RoleService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	inUse, err := s.users.CountByRole(ctx, id)
	if err != nil {
		return fmt.Errorf("delete role: count users: %w", err)
	}
	if inUse > 0 {
		return domain.Conflict(domain.ErrRoleInUse)
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	// A deleted role fences out every version it ever had.
	s.invalidate(ctx, id, role.Version+1)
	s.record(ctx, actor, domain.AuditDelete, fmt.Sprintf("Role '%s' deleted", role.Name), role)
	return nil
}

// AssignPermissions adds perms to the role. Permissions already granted are
// left as they are.
func (s *RoleService) AssignPermissions(ctx context.Context, actor ports.Actor, id string, perms []string) (*domain.Role, error) {
	perms = domain.NormalizePermissions(perms)
	if len(perms) == 0 {
		return nil, domain.Validation(domain.ErrInvalidInput)
	}
	role, err := s.roles.AddPermissions(ctx, id, perms)
	if err != nil {
		return nil, fmt.Errorf("assign permissions: %w", err)
	}
	s.invalidate(ctx, id, role.Version)
	s.record(ctx, actor, domain.AuditUpdate,
		fmt.Sprintf("Permissions %s assigned to role '%s'", strings.Join(perms, ", "), role.Name), role)
	return role, nil
}

func (s *RoleService) SeedDefaults(ctx context.Context) ([]string, error) {
	var created []string
	for _, def := range domain.DefaultRoles() {
		_, err := s.roles.FindByName(ctx, def.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrRoleNotFound) {
			return created, fmt.Errorf("seed roles: %w", err)
		}
		if _, err := s.roles.Create(ctx, &def); err != nil {
			if errors.Is(err, domain.ErrRoleExists) {
				continue
			}
			return created, fmt.Errorf("seed roles: create %s: %w", def.Name, err)
		}
		created = append(created, def.Name)
	}
	if len(created) > 0 {
		s.log.Info().Strs("roles", created).Msg("default roles seeded")
	}
	return created, nil
}

// invalidate clears the cached role and fences out copies older than
// version, so a reader that loaded the role before this write cannot put
// it back.
func (s *RoleService) invalidate(ctx context.Context, id string, version int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id, version); err != nil {
		s.log.Warn().Err(err).Str("role_id", id).Msg("permission cache invalidation failed")
	}
}

func (s *RoleService) record(ctx context.Context, actor ports.Actor, action domain.AuditAction, desc string, role *domain.Role) {
	s.audit.record(ctx, domain.AuditEntry{
		Action:      action,
		Description: desc,
		UserID:      actor.UserID,
		IPAddress:   actor.IP,
		AdditionalInfo: map[string]any{
			"roleId":      role.ID,
			"permissions": role.Permissions,
		},
	})
}

var _ ports.RoleService = (*RoleService)(nil)
