package ports

import (
	"context"
	"time"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// SessionRepository is the session token store.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	// FindByToken matches the exact token string among sessions not expired at now.
	// Returns domain.ErrTokenNotFound otherwise.
	FindByToken(ctx context.Context, token string, now time.Time) (*domain.Session, error)
	// DeleteByToken reports whether a record was removed.
	DeleteByToken(ctx context.Context, token string) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// ResetCodeRepository stores password reset OTPs.
type ResetCodeRepository interface {
	// Create returns domain.ErrOTPInvalid if the code collides with a live one.
	Create(ctx context.Context, rc *domain.ResetCode) error
	// FindByCode returns domain.ErrOTPInvalid when no record matches.
	FindByCode(ctx context.Context, code string) (*domain.ResetCode, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
