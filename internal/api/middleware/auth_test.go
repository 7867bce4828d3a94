package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

type stubAuthenticator struct {
	id  domain.Identity
	err error

	gotHeader string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, header string) (domain.Identity, error) {
	s.gotHeader = header
	return s.id, s.err
}

func TestAuthenticate_SetsIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	authn := &stubAuthenticator{id: domain.Identity{UserID: "u1", Token: "abc"}}
	var got domain.Identity
	handler := Authenticate(authn)(func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			t.Fatalf("identity missing from context")
		}
		got = id
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if authn.gotHeader != "Bearer abc" {
		t.Fatalf("authenticator got header %q", authn.gotHeader)
	}
	if got.UserID != "u1" || got.Token != "abc" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if c.Get(KeyUserID) != "u1" || c.Get(KeyToken) != "abc" {
		t.Fatalf("context keys not set")
	}
}

func TestAuthenticate_RejectsWithoutCallingNext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	authn := &stubAuthenticator{err: domain.Unauthenticated(domain.ErrMissingHeader)}
	handler := Authenticate(authn)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrMissingHeader) {
		t.Fatalf("expected missing header error, got %v", err)
	}
	if domain.KindOf(err) != domain.KindUnauthenticated {
		t.Fatalf("expected unauthenticated kind, got %v", domain.KindOf(err))
	}
}

func TestIdentityFrom_Empty(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, ok := IdentityFrom(c); ok {
		t.Fatalf("expected no identity")
	}
}
