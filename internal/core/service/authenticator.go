package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// Authenticator resolves a bearer header into an Identity. A token is only
// accepted while its session record exists, so logout revokes it immediately.
type Authenticator struct {
	sessions ports.SessionRepository
	secret   []byte
	now      func() time.Time
	log      zerolog.Logger
}

func NewAuthenticator(sessions ports.SessionRepository, secret string, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		sessions: sessions,
		secret:   []byte(secret),
		now:      time.Now,
		log:      log,
	}
}

// Authenticate validates header in three steps: presence and scheme, store
// membership, then signature and subject.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (domain.Identity, error) {
	token, ok := bearerToken(header)
	if !ok {
		return domain.Identity{}, domain.Unauthenticated(domain.ErrMissingHeader)
	}

	now := a.now()
	session, err := a.sessions.FindByToken(ctx, token, now)
	if errors.Is(err, domain.ErrTokenNotFound) {
		return domain.Identity{}, domain.Unauthenticated(domain.ErrTokenNotFound)
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("authenticate: %w", err)
	}

	if err := verifyToken(a.secret, token, session.UserID, now); err != nil {
		a.log.Debug().Err(err).Str("user_id", session.UserID).Msg("stored token failed verification")
		return domain.Identity{}, domain.Unauthenticated(domain.ErrSignatureInvalid)
	}

	return domain.Identity{UserID: session.UserID, Token: token}, nil
}

func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
