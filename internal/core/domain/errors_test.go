package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil-like unknown", errors.New("boom"), KindInternal},
		{"sentinel default", ErrTokenNotFound, KindUnauthenticated},
		{"wrapped sentinel", fmt.Errorf("get role: %w", ErrRoleNotFound), KindNotFound},
		{"explicit kind overrides default", Unauthenticated(ErrUserNotFound), KindUnauthenticated},
		{"explicit kind through wrapping", fmt.Errorf("x: %w", Forbidden(ErrNotAdmin)), KindForbidden},
		{"conflict", ErrRoleInUse, KindConflict},
		{"validation", ErrOTPExpired, KindValidation},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("%s: KindOf = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestCause(t *testing.T) {
	err := fmt.Errorf("update user: %w", Conflict(ErrUserExists))
	if Cause(err) != ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", Cause(err))
	}
	if Cause(errors.New("boom")) != nil {
		t.Fatalf("expected nil cause for unknown error")
	}
}

func TestConstructorsKeepNil(t *testing.T) {
	if Validation(nil) != nil || NotFound(nil) != nil {
		t.Fatalf("constructors must return nil for nil input")
	}
}

func TestNormalizePermissions(t *testing.T) {
	got := NormalizePermissions([]string{" a", "b", "a", "", "  ", "c", "b "})
	want := []string{"a", "b", "c"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRole_HasAndGrant(t *testing.T) {
	var nilRole *Role
	if nilRole.Has(PermViewOwnProfile) {
		t.Fatalf("nil role must grant nothing")
	}
	r := &Role{Name: RoleUser, Permissions: []string{PermViewOwnProfile}}
	r.Grant(PermUpdateOwnProfile, PermViewOwnProfile)
	if !r.Has(PermUpdateOwnProfile) || len(r.Permissions) != 2 {
		t.Fatalf("unexpected permissions %v", r.Permissions)
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage(0, 1000)
	if p.Number != 1 || p.Limit != MaxPageLimit || p.Offset() != 0 {
		t.Fatalf("unexpected page %+v", p)
	}
	if NewPage(3, 5).Offset() != 10 {
		t.Fatalf("unexpected offset")
	}
}
