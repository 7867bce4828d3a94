package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// AuditService records and queries the audit log.
type AuditService struct {
	repo ports.AuditRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, now: time.Now, log: log}
}

// Record appends e. Unlike the gate writes, failures are returned.
func (s *AuditService) Record(ctx context.Context, e domain.AuditEntry) error {
	if !e.Action.Valid() || e.Description == "" {
		return domain.Validation(domain.ErrInvalidInput)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	if err := s.repo.Insert(context.WithoutCancel(ctx), &e); err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

func (s *AuditService) ByUser(ctx context.Context, userID string) ([]*domain.AuditEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Validation(domain.ErrInvalidInput)
	}
	entries, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("audit by user: %w", err)
	}
	if len(entries) == 0 {
		return nil, domain.NotFound(domain.ErrLogsNotFound)
	}
	return entries, nil
}

func (s *AuditService) ByAction(ctx context.Context, action string) ([]*domain.AuditEntry, error) {
	a := domain.AuditAction(strings.ToUpper(strings.TrimSpace(action)))
	if a == "" {
		return nil, domain.Validation(domain.ErrInvalidInput)
	}
	entries, err := s.repo.FindByAction(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("audit by action: %w", err)
	}
	if len(entries) == 0 {
		return nil, domain.NotFound(domain.ErrLogsNotFound)
	}
	return entries, nil
}

func (s *AuditService) Page(ctx context.Context, page, limit int) (*ports.AuditPage, error) {
	p := domain.NewPage(page, limit)
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit page: count: %w", err)
	}
	entries, err := s.repo.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, fmt.Errorf("audit page: %w", err)
	}
	return &ports.AuditPage{Items: entries, Total: total, Page: p.Number, Limit: p.Limit}, nil
}

// Cleanup deletes entries older than days.
func (s *AuditService) Cleanup(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, domain.Validation(domain.ErrInvalidInput)
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	n, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit cleanup: %w", err)
	}
	s.log.Info().Int("days", days).Int64("deleted", n).Msg("audit log cleanup")
	return n, nil
}

var _ ports.AuditService = (*AuditService)(nil)
