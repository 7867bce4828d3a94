package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
	"github.com/keystone-labs/rbac-core/internal/testutil/memstore"
)

const testSecret = "test-secret"

type fixture struct {
	store *memstore.Store
	auth  *AuthService
	authn *Authenticator
	authz *Authorizer
	roles *RoleService
	users *UserService
	audit *AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	log := zerolog.Nop()
	f := &fixture{
		store: st,
		auth: NewAuthService(st.Users, st.Roles, st.Sessions, st.ResetCodes, st.Mailer, st.Audit,
			AuthConfig{Secret: testSecret}, log),
		authn: NewAuthenticator(st.Sessions, testSecret, log),
		authz: NewAuthorizer(st.Users, st.Roles, st.Cache, st.Audit, log),
		roles: NewRoleService(st.Roles, st.Users, st.Cache, st.Audit, log),
		users: NewUserService(st.Users, st.Roles, st.Sessions, st.ResetCodes, st.Images, st.Audit, log),
		audit: NewAuditService(st.Audit, log),
	}
	if _, err := f.roles.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return f
}

func (f *fixture) register(t *testing.T, email, password string) *domain.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), ports.RegisterInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func (f *fixture) login(t *testing.T, email, password string) string {
	t.Helper()
	res, err := f.auth.Login(context.Background(), email, password, "127.0.0.1")
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return res.Token
}

func (f *fixture) roleID(t *testing.T, name string) string {
	t.Helper()
	r, err := f.store.Roles.FindByName(context.Background(), name)
	if err != nil {
		t.Fatalf("find role %s: %v", name, err)
	}
	return r.ID
}
