package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

func TestUserService_GetProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "xan@example.com", "pw")
	self := ports.Actor{UserID: user.ID}

	got, err := f.users.GetProfile(ctx, self, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	require.NotNil(t, got.Role)
	assert.Equal(t, domain.RoleUser, got.Role.Name)

	entries := f.store.Audit.Entries()
	assert.Equal(t, domain.AuditViewProfile, entries[len(entries)-1].Action)

	_, err = f.users.GetProfile(ctx, self, "someone-else")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestUserService_GetProfile_NotFoundIsAudited(t *testing.T) {
	f := newFixture(t)
	before := f.store.Audit.Len()

	_, err := f.users.GetProfile(context.Background(), ports.Actor{UserID: "ghost"}, "ghost")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	added := f.store.Audit.Since(before)
	require.Len(t, added, 1)
	assert.Equal(t, domain.AuditViewProfile, added[0].Action)
	assert.Contains(t, added[0].Description, "not found")
}

func TestUserService_UpdateProfile_WithImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "yara@example.com", "pw")
	self := ports.Actor{UserID: user.ID}
	f.users.now = func() time.Time { return time.UnixMilli(1700000000000) }

	updated, err := f.users.UpdateProfile(ctx, self, user.ID, ports.ProfileUpdateInput{
		FirstName: "Yara",
		Image:     &ports.Image{Name: "Me.PNG", ContentType: "image/png", Size: 3, Body: bytes.NewReader([]byte{1, 2, 3})},
	})
	require.NoError(t, err)
	assert.Equal(t, "Yara", updated.FirstName)
	assert.Equal(t, "Yara_1700000000000.png", updated.ProfileImage)
	assert.True(t, f.store.Images.Has(updated.ProfileImage))

	// Replacing the image removes the previous object.
	f.users.now = func() time.Time { return time.UnixMilli(1700000000999) }
	again, err := f.users.UpdateProfile(ctx, self, user.ID, ports.ProfileUpdateInput{
		Image: &ports.Image{Name: "b.jpg", Body: strings.NewReader("x")},
	})
	require.NoError(t, err)
	assert.False(t, f.store.Images.Has(updated.ProfileImage))
	assert.True(t, f.store.Images.Has(again.ProfileImage))

	entries := f.store.Audit.Entries()
	assert.Equal(t, domain.AuditUpdateProfile, entries[len(entries)-1].Action)
}

func TestUserService_UpdateProfile_EmailConflict(t *testing.T) {
	f := newFixture(t)
	f.register(t, "taken@example.com", "pw")
	user := f.register(t, "zed@example.com", "pw")

	_, err := f.users.UpdateProfile(context.Background(), ports.Actor{UserID: user.ID}, user.ID, ports.ProfileUpdateInput{Email: "taken@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestUserService_DeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "abe@example.com", "pw")
	other := f.register(t, "bea@example.com", "pw")
	f.login(t, "abe@example.com", "pw")
	require.NoError(t, f.auth.ForgotPassword(ctx, "abe@example.com"))

	err := f.users.DeleteAccount(ctx, ports.Actor{UserID: other.ID}, user.ID)
	require.ErrorIs(t, err, domain.ErrDeleteNotOwner)
	assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))

	require.NoError(t, f.users.DeleteAccount(ctx, ports.Actor{UserID: user.ID}, user.ID))
	_, err = f.store.Users.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Zero(t, f.store.Sessions.CountByUser(user.ID))
	assert.Empty(t, f.store.ResetCodes.Codes(user.ID))
}

func TestUserService_AdminLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.users.CreateUser(ctx, adminActor, ports.CreateUserInput{
		FirstName: "Cy", Email: "cy@example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, f.roleID(t, domain.RoleUser), created.RoleID, "role defaults to user")

	_, err = f.users.CreateUser(ctx, adminActor, ports.CreateUserInput{
		FirstName: "Dee", Email: "dee@example.com", Password: "pw", Role: "wizard",
	})
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	admin := domain.RoleAdmin
	updated, err := f.users.UpdateUser(ctx, adminActor, created.ID, ports.AdminUpdateInput{Role: &admin})
	require.NoError(t, err)
	require.NotNil(t, updated.Role)
	assert.Equal(t, domain.RoleAdmin, updated.Role.Name)

	require.NoError(t, f.users.DeleteUser(ctx, adminActor, created.ID))
	_, err = f.users.GetUser(ctx, created.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	var actions []domain.AuditAction
	for _, e := range f.store.Audit.Entries() {
		if e.UserID == adminActor.UserID {
			actions = append(actions, e.Action)
		}
	}
	assert.Equal(t, []domain.AuditAction{domain.AuditCreate, domain.AuditUpdate, domain.AuditDelete}, actions)
}

func TestUserService_ListUsers(t *testing.T) {
	f := newFixture(t)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		f.register(t, email, "pw")
	}

	page, err := f.users.ListUsers(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Items[0].SrNo)
	assert.Equal(t, "c@example.com", page.Items[0].User.Email)
	require.NotNil(t, page.Items[0].User.Role)

	page, err = f.users.ListUsers(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, domain.DefaultPageLimit, page.Limit)
}

type brokenRoles struct {
	ports.RoleRepository
	err error
}

func (r *brokenRoles) FindByID(context.Context, string) (*domain.Role, error) {
	return nil, r.err
}

func TestUserService_ListUsers_RoleStoreFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.register(t, "d@example.com", "pw")

	var buf bytes.Buffer
	roles := &brokenRoles{RoleRepository: f.store.Roles, err: errors.New("connection reset")}
	users := NewUserService(f.store.Users, roles, f.store.Sessions, f.store.ResetCodes, f.store.Images, f.store.Audit, zerolog.New(&buf))

	page, err := users.ListUsers(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Nil(t, page.Items[0].User.Role)
	assert.Contains(t, buf.String(), "failed to load role")
	assert.Contains(t, buf.String(), "connection reset")

	buf.Reset()
	roles.err = domain.ErrRoleNotFound
	_, err = users.ListUsers(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "a dangling role reference is not a store failure")
}

func TestImageName(t *testing.T) {
	now := time.UnixMilli(42)
	assert.Equal(t, "Ann_42.jpeg", imageName("Ann", "photo.JPEG", now))
	assert.Equal(t, "42_photo.png", imageName("", "photo.png", now))
}
