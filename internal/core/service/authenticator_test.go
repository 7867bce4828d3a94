package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

func TestAuthenticator_Authenticate(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "kim@example.com", "pw")
	token := f.login(t, "kim@example.com", "pw")

	id, err := f.authn.Authenticate(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID != user.ID || id.Token != token {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthenticator_MissingHeader(t *testing.T) {
	f := newFixture(t)

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc", "token-without-scheme"} {
		_, err := f.authn.Authenticate(context.Background(), header)
		if !errors.Is(err, domain.ErrMissingHeader) || domain.KindOf(err) != domain.KindUnauthenticated {
			t.Fatalf("header %q: expected ErrMissingHeader, got %v", header, err)
		}
	}
}

func TestAuthenticator_UnknownToken(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "lee@example.com", "pw")

	// Correctly signed, but never stored.
	forged, err := issueToken([]byte(testSecret), user.ID, time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := f.authn.Authenticate(context.Background(), "Bearer "+forged); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestAuthenticator_StoreCheckedBeforeSignature(t *testing.T) {
	f := newFixture(t)

	// Garbage that is not even a JWT must fail on store membership first.
	if _, err := f.authn.Authenticate(context.Background(), "Bearer not-a-jwt"); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestAuthenticator_SignatureInvalid(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "max@example.com", "pw")

	now := time.Now()
	wrongKey, _ := issueToken([]byte("other-secret"), user.ID, now, time.Hour)
	_ = f.store.Sessions.Create(context.Background(), &domain.Session{Token: wrongKey, UserID: user.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	if _, err := f.authn.Authenticate(context.Background(), "Bearer "+wrongKey); !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for foreign key, got %v", err)
	}

	otherSubject, _ := issueToken([]byte(testSecret), "someone-else", now, time.Hour)
	_ = f.store.Sessions.Create(context.Background(), &domain.Session{Token: otherSubject, UserID: user.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	if _, err := f.authn.Authenticate(context.Background(), "Bearer "+otherSubject); !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for subject mismatch, got %v", err)
	}
}

func TestAuthenticator_ExpiredSession(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ned@example.com", "pw")
	token := f.login(t, "ned@example.com", "pw")

	authn := NewAuthenticator(f.store.Sessions, testSecret, zerolog.Nop())
	authn.now = func() time.Time { return time.Now().Add(domain.DefaultSessionTTL + time.Minute) }
	if _, err := authn.Authenticate(context.Background(), "Bearer "+token); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}
