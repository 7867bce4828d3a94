package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

var adminActor = ports.Actor{UserID: "admin-1", IP: "198.51.100.7"}

func TestRoleService_SeedDefaults_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.roles.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Empty(t, created, "second seed must not create anything")

	roles, err := f.roles.List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)

	byName := map[string]*domain.Role{}
	for _, r := range roles {
		byName[r.Name] = r
	}
	assert.ElementsMatch(t, []string{domain.PermCreateUser, domain.PermDeleteUser, domain.PermViewAllUsers}, byName[domain.RoleAdmin].Permissions)
	assert.ElementsMatch(t, []string{domain.PermViewOwnProfile, domain.PermUpdateOwnProfile}, byName[domain.RoleUser].Permissions)
}

func TestRoleService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role, err := f.roles.Create(ctx, adminActor, " auditor ", []string{"read_logs", "read_logs", " "})
	require.NoError(t, err)
	assert.Equal(t, "auditor", role.Name)
	assert.Equal(t, []string{"read_logs"}, role.Permissions)

	_, err = f.roles.Create(ctx, adminActor, "auditor", nil)
	require.ErrorIs(t, err, domain.ErrRoleExists)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = f.roles.Create(ctx, adminActor, "", nil)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	entries := f.store.Audit.Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, domain.AuditCreate, last.Action)
	assert.Equal(t, adminActor.UserID, last.UserID)
}

func TestRoleService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role, err := f.roles.Create(ctx, adminActor, "support", []string{"a"})
	require.NoError(t, err)

	name := "helpdesk"
	updated, err := f.roles.Update(ctx, adminActor, role.ID, domain.RoleUpdate{Name: &name, Permissions: []string{"b", "b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, "helpdesk", updated.Name)
	assert.Equal(t, []string{"b", "c"}, updated.Permissions)

	taken := domain.RoleAdmin
	_, err = f.roles.Update(ctx, adminActor, role.ID, domain.RoleUpdate{Name: &taken})
	assert.ErrorIs(t, err, domain.ErrRoleExists)

	_, err = f.roles.Update(ctx, adminActor, "nope", domain.RoleUpdate{Name: &name})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestRoleService_AssignPermissions_Union(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role, err := f.roles.Create(ctx, adminActor, "editor", []string{"edit"})
	require.NoError(t, err)

	for range 2 {
		role, err = f.roles.AssignPermissions(ctx, adminActor, role.ID, []string{"publish", "edit"})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"edit", "publish"}, role.Permissions)

	_, err = f.roles.AssignPermissions(ctx, adminActor, role.ID, nil)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestRoleService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.roles.Delete(ctx, adminActor, f.roleID(t, domain.RoleUser))
	require.NoError(t, err, "no user references the role yet")

	_, err = f.roles.SeedDefaults(ctx)
	require.NoError(t, err)
	f.register(t, "wes@example.com", "pw")

	err = f.roles.Delete(ctx, adminActor, f.roleID(t, domain.RoleUser))
	require.ErrorIs(t, err, domain.ErrRoleInUse)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	err = f.roles.Delete(ctx, adminActor, "nope")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
