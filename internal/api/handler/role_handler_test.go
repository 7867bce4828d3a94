package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

type stubRoleService struct {
	ports.RoleService

	createFn func(ctx context.Context, actor ports.Actor, name string, perms []string) (*domain.Role, error)
	updateFn func(ctx context.Context, actor ports.Actor, id string, upd domain.RoleUpdate) (*domain.Role, error)
	deleteFn func(ctx context.Context, actor ports.Actor, id string) error
}

func (s *stubRoleService) Create(ctx context.Context, actor ports.Actor, name string, perms []string) (*domain.Role, error) {
	return s.createFn(ctx, actor, name, perms)
}

func (s *stubRoleService) Update(ctx context.Context, actor ports.Actor, id string, upd domain.RoleUpdate) (*domain.Role, error) {
	return s.updateFn(ctx, actor, id, upd)
}

func (s *stubRoleService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func TestRoleHandler_Create(t *testing.T) {
	stub := &stubRoleService{
		createFn: func(ctx context.Context, actor ports.Actor, name string, perms []string) (*domain.Role, error) {
			if actor.UserID != "admin-1" || name != "editor" || len(perms) != 2 {
				t.Fatalf("unexpected input: %+v %s %v", actor, name, perms)
			}
			return &domain.Role{ID: "r9", Name: name, Permissions: perms}, nil
		},
	}
	handler := NewRoleHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/admin/create-roles", `{"name":"editor","permissions":["a","b"]}`)
	withIdentity(c, "admin-1", "tok")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestRoleHandler_Create_MissingName(t *testing.T) {
	handler := NewRoleHandler(&stubRoleService{})

	c, _ := newJSONContext(http.MethodPost, "/admin/create-roles", `{"permissions":["a"]}`)
	withIdentity(c, "admin-1", "tok")

	if err := handler.Create(c); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRoleHandler_Update_PassesPartialFields(t *testing.T) {
	stub := &stubRoleService{
		updateFn: func(ctx context.Context, actor ports.Actor, id string, upd domain.RoleUpdate) (*domain.Role, error) {
			if id != "r1" || upd.Name != nil || len(upd.Permissions) != 1 {
				t.Fatalf("unexpected update: %s %+v", id, upd)
			}
			return &domain.Role{ID: id, Name: "user", Permissions: upd.Permissions}, nil
		},
	}
	handler := NewRoleHandler(stub)

	c, rec := newJSONContext(http.MethodPatch, "/admin/update-roles/r1", `{"permissions":["view_own_profile"]}`)
	c.SetParamNames("id")
	c.SetParamValues("r1")
	withIdentity(c, "admin-1", "tok")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRoleHandler_Delete_InUse(t *testing.T) {
	stub := &stubRoleService{
		deleteFn: func(ctx context.Context, actor ports.Actor, id string) error {
			return domain.Conflict(domain.ErrRoleInUse)
		},
	}
	handler := NewRoleHandler(stub)

	c, _ := newJSONContext(http.MethodDelete, "/admin/delete-roles/r1", "")
	c.SetParamNames("id")
	c.SetParamValues("r1")
	withIdentity(c, "admin-1", "tok")

	if err := handler.Delete(c); !errors.Is(err, domain.ErrRoleInUse) {
		t.Fatalf("expected role in use, got %v", err)
	}
}
