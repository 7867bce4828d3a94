package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// auditRecorder writes audit entries detached from the caller's cancellation
// and reports failures instead of returning them.
type auditRecorder struct {
	repo ports.AuditRepository
	now  func() time.Time
	log  zerolog.Logger
}

func newAuditRecorder(repo ports.AuditRepository, log zerolog.Logger) auditRecorder {
	return auditRecorder{repo: repo, now: time.Now, log: log}
}

func (r auditRecorder) record(ctx context.Context, e domain.AuditEntry) bool {
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now().UTC()
	}
	if err := r.repo.Insert(context.WithoutCancel(ctx), &e); err != nil {
		r.log.Warn().Err(err).
			Str("action", string(e.Action)).
			Str("user_id", e.UserID).
			Msg("audit write failed")
		return false
	}
	return true
}
