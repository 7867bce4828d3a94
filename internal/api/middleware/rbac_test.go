package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

type stubAuthorizer struct {
	decision ports.Decision
	err      error

	gotUser, gotSubject, gotOrigin string
}

func (s *stubAuthorizer) RequireRole(_ context.Context, userID, role, origin string) (ports.Decision, error) {
	s.gotUser, s.gotSubject, s.gotOrigin = userID, role, origin
	return s.decision, s.err
}

func (s *stubAuthorizer) CheckPermission(_ context.Context, userID, action, origin string) (ports.Decision, error) {
	s.gotUser, s.gotSubject, s.gotOrigin = userID, action, origin
	return s.decision, s.err
}

func authedContext(rec *httptest.ResponseRecorder) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	c := e.NewContext(req, rec)
	c.Set(KeyUserID, "u1")
	c.Set(KeyToken, "tok")
	return c
}

func TestRequireRole_Allows(t *testing.T) {
	rec := httptest.NewRecorder()
	c := authedContext(rec)
	authz := &stubAuthorizer{decision: ports.Decision{Allowed: true, Audited: true}}

	called := false
	handler := RequireRole(authz, domain.RoleAdmin, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if authz.gotUser != "u1" || authz.gotSubject != domain.RoleAdmin {
		t.Fatalf("unexpected gate input: %s %s", authz.gotUser, authz.gotSubject)
	}
	if authz.gotOrigin != "10.0.0.7" {
		t.Fatalf("expected origin 10.0.0.7, got %q", authz.gotOrigin)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	rec := httptest.NewRecorder()
	c := authedContext(rec)
	authz := &stubAuthorizer{
		decision: ports.Decision{Audited: true},
		err:      domain.Forbidden(domain.ErrNotAdmin),
	}

	handler := RequireRole(authz, domain.RoleAdmin, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	if domain.KindOf(err) != domain.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRequirePermission_DeniedWithoutError(t *testing.T) {
	rec := httptest.NewRecorder()
	c := authedContext(rec)
	authz := &stubAuthorizer{decision: ports.Decision{Audited: false}}

	handler := RequirePermission(authz, domain.PermViewOwnProfile, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if authz.gotSubject != domain.PermViewOwnProfile {
		t.Fatalf("unexpected action %q", authz.gotSubject)
	}
}

func TestRequirePermission_NeedsIdentity(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	authz := &stubAuthorizer{decision: ports.Decision{Allowed: true, Audited: true}}

	handler := RequirePermission(authz, domain.PermViewOwnProfile, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); domain.KindOf(err) != domain.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if authz.gotUser != "" {
		t.Fatalf("authorizer should not be consulted")
	}
}
