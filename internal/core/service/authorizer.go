package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// Authorizer runs the role and permission gates. Every decision it reaches
// is written to the audit log exactly once.
type Authorizer struct {
	users ports.UserRepository
	roles ports.RoleRepository
	cache ports.PermissionCache
	audit auditRecorder
	log   zerolog.Logger
}

// NewAuthorizer returns an Authorizer. cache may be nil.
func NewAuthorizer(
	users ports.UserRepository,
	roles ports.RoleRepository,
	cache ports.PermissionCache,
	audit ports.AuditRepository,
	log zerolog.Logger,
) *Authorizer {
	return &Authorizer{
		users: users,
		roles: roles,
		cache: cache,
		audit: newAuditRecorder(audit, log),
		log:   log,
	}
}

// RequireRole allows userID only if its resolved role is named role.
func (a *Authorizer) RequireRole(ctx context.Context, userID, role, origin string) (ports.Decision, error) {
	user, err := a.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		audited := a.audit.record(ctx, gateEntry("role", role, userID, origin,
			fmt.Sprintf("User not found for ID: %s", userID)))
		return ports.Decision{Audited: audited}, domain.Unauthenticated(domain.ErrUserNotFound)
	}
	if err != nil {
		return ports.Decision{}, fmt.Errorf("require role: %w", err)
	}

	resolved, ok, err := a.resolveRole(ctx, user)
	if err != nil {
		return ports.Decision{}, fmt.Errorf("require role: %w", err)
	}

	allowed := ok && resolved.Name == role
	verdict := "denied"
	if allowed {
		verdict = "granted"
	}
	audited := a.audit.record(ctx, gateEntry("role", role, user.ID, origin,
		fmt.Sprintf("Role '%s' %s for user ID: %s", role, verdict, user.ID)))

	if !allowed {
		return ports.Decision{Audited: audited}, domain.Forbidden(domain.ErrNotAdmin)
	}
	return ports.Decision{Allowed: true, Audited: audited}, nil
}

// CheckPermission allows userID only if its resolved role grants action.
func (a *Authorizer) CheckPermission(ctx context.Context, userID, action, origin string) (ports.Decision, error) {
	user, err := a.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		audited := a.audit.record(ctx, gateEntry("permission", action, userID, origin,
			fmt.Sprintf("User not found for ID: %s", userID)))
		return ports.Decision{Audited: audited}, domain.NotFound(domain.ErrUserNotFound)
	}
	if err != nil {
		return ports.Decision{}, fmt.Errorf("check permission: %w", err)
	}

	resolved, _, err := a.resolveRole(ctx, user)
	if err != nil {
		return ports.Decision{}, fmt.Errorf("check permission: %w", err)
	}

	if !resolved.Has(action) {
		audited := a.audit.record(ctx, gateEntry("permission", action, user.ID, origin,
			fmt.Sprintf("Permission '%s' denied for user ID: %s", action, user.ID)))
		return ports.Decision{Audited: audited}, domain.Forbidden(domain.ErrPermissionDenied)
	}

	audited := a.audit.record(ctx, gateEntry("permission", action, user.ID, origin,
		fmt.Sprintf("Permission '%s' granted for user ID: %s", action, user.ID)))
	return ports.Decision{Allowed: true, Audited: audited}, nil
}

// resolveRole dereferences the user's role. ok is false when the reference
// dangles; the caller treats that as an empty permission set.
func (a *Authorizer) resolveRole(ctx context.Context, user *domain.User) (*domain.Role, bool, error) {
	if user.RoleID == "" {
		return nil, false, nil
	}

	if a.cache != nil {
		role, hit, err := a.cache.Get(ctx, user.RoleID)
		if err != nil {
			a.log.Warn().Err(err).Str("role_id", user.RoleID).Msg("permission cache read failed, falling back to store")
		} else if hit {
			return role, true, nil
		}
	}

	role, err := a.roles.FindByID(ctx, user.RoleID)
	if errors.Is(err, domain.ErrRoleNotFound) {
		a.log.Warn().Str("user_id", user.ID).Str("role_id", user.RoleID).Msg("dangling role reference")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, role); err != nil {
			a.log.Warn().Err(err).Str("role_id", role.ID).Msg("permission cache write failed")
		}
	}
	return role, true, nil
}

func gateEntry(gate, subject, userID, origin, description string) domain.AuditEntry {
	info := map[string]any{"gate": gate}
	if gate == "role" {
		info["role"] = subject
	} else {
		info["action"] = subject
	}
	return domain.AuditEntry{
		Action:         domain.AuditPermissionCheck,
		Description:    description,
		UserID:         userID,
		IPAddress:      origin,
		AdditionalInfo: info,
	}
}
