package domain

import (
	"slices"
	"strings"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Built-in permission names.
const (
	PermCreateUser       = "create_user"
	PermDeleteUser       = "delete_user"
	PermViewAllUsers     = "view_all_users"
	PermViewOwnProfile   = "view_own_profile"
	PermUpdateOwnProfile = "update_own_profile"
)

// Role is a named bundle of permission strings. Version grows by one on
// every stored change and orders cached copies against the store.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	Version     int64    `json:"version"`
}

// DefaultRoles are seeded at startup when missing.
func DefaultRoles() []Role {
	return []Role{
		{Name: RoleAdmin, Permissions: []string{PermCreateUser, PermDeleteUser, PermViewAllUsers}},
		{Name: RoleUser, Permissions: []string{PermViewOwnProfile, PermUpdateOwnProfile}},
	}
}

// Has reports whether the role grants action. A nil role grants nothing.
func (r *Role) Has(action string) bool {
	if r == nil {
		return false
	}
	return slices.Contains(r.Permissions, action)
}

// Grant unions perms into the role's set, keeping first-seen order.
func (r *Role) Grant(perms ...string) {
	r.Permissions = NormalizePermissions(append(slices.Clone(r.Permissions), perms...))
}

// NormalizePermissions trims entries, drops blanks and collapses duplicates.
func NormalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// RoleUpdate replaces the fields that are set.
type RoleUpdate struct {
	Name        *string
	Permissions []string
}
