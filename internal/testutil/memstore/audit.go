package memstore

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// ErrAuditDown is returned by Audit while Fail is set.
var ErrAuditDown = errors.New("audit store unavailable")

// Audit is an in-memory ports.AuditRepository. When Users is set, listings
// embed the acting user the way the Mongo lookup does.
type Audit struct {
	mu      sync.Mutex
	seq     int
	entries []domain.AuditEntry
	fail    bool
	Users   *Users
}

func NewAudit(users *Users) *Audit {
	return &Audit{Users: users}
}

// Fail makes subsequent inserts fail (or succeed again).
func (r *Audit) Fail(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

func (r *Audit) Insert(_ context.Context, e *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return ErrAuditDown
	}
	r.seq++
	e.ID = "a" + strconv.Itoa(r.seq)
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	r.entries = append(r.entries, *e)
	return nil
}

// Entries returns a snapshot in insertion order.
func (r *Audit) Entries() []domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// Since returns entries inserted after the first n.
func (r *Audit) Since(n int) []domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n >= len(r.entries) {
		return nil
	}
	return slices.Clone(r.entries[n:])
}

func (r *Audit) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Audit) FindByUser(ctx context.Context, userID string) ([]*domain.AuditEntry, error) {
	return r.filter(ctx, func(e domain.AuditEntry) bool { return e.UserID == userID }, 0, 0)
}

func (r *Audit) FindByAction(ctx context.Context, action domain.AuditAction) ([]*domain.AuditEntry, error) {
	return r.filter(ctx, func(e domain.AuditEntry) bool { return e.Action == action }, 0, 0)
}

func (r *Audit) List(ctx context.Context, offset, limit int) ([]*domain.AuditEntry, error) {
	return r.filter(ctx, func(domain.AuditEntry) bool { return true }, offset, limit)
}

func (r *Audit) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *Audit) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.entries)
	r.entries = slices.DeleteFunc(r.entries, func(e domain.AuditEntry) bool { return e.Timestamp.Before(cutoff) })
	return int64(before - len(r.entries)), nil
}

func (r *Audit) filter(ctx context.Context, keep func(domain.AuditEntry) bool, offset, limit int) ([]*domain.AuditEntry, error) {
	r.mu.Lock()
	var matched []domain.AuditEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if keep(r.entries[i]) {
			matched = append(matched, r.entries[i])
		}
	}
	r.mu.Unlock()

	out := make([]*domain.AuditEntry, 0, len(matched))
	for i, e := range matched {
		if i < offset {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		if r.Users != nil && e.UserID != "" {
			if u, err := r.Users.FindByID(ctx, e.UserID); err == nil {
				e.User = &domain.AuditActor{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
			}
		}
		out = append(out, &e)
	}
	return out, nil
}
