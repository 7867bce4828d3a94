package ports

import (
	"context"
	"time"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// AuditRepository is the append-only audit log. Listings are newest first.
type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuditEntry) error
	FindByUser(ctx context.Context, userID string) ([]*domain.AuditEntry, error)
	FindByAction(ctx context.Context, action domain.AuditAction) ([]*domain.AuditEntry, error)
	List(ctx context.Context, offset, limit int) ([]*domain.AuditEntry, error)
	Count(ctx context.Context) (int64, error)
	// DeleteOlderThan removes entries with a timestamp strictly before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
