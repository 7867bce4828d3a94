package ports

import (
	"context"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// AuditPage is one page of audit entries.
type AuditPage struct {
	Items []*domain.AuditEntry
	Total int64
	Page  int
	Limit int
}

// AuditService records and queries the audit log.
type AuditService interface {
	Record(ctx context.Context, e domain.AuditEntry) error
	ByUser(ctx context.Context, userID string) ([]*domain.AuditEntry, error)
	ByAction(ctx context.Context, action string) ([]*domain.AuditEntry, error)
	Page(ctx context.Context, page, limit int) (*AuditPage, error)
	// Cleanup deletes entries older than days and returns how many were removed.
	Cleanup(ctx context.Context, days int) (int64, error)
}
