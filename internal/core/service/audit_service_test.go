package service

import (
	"context"
	"testing"
	"time"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

func TestAuditService_Record(t *testing.T) {
	f := newFixture(t)

	if err := f.audit.Record(context.Background(), domain.AuditEntry{Action: "BOGUS", Description: "x"}); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error for unknown action, got %v", err)
	}
	if err := f.audit.Record(context.Background(), domain.AuditEntry{Action: domain.AuditRead, Description: "viewed"}); err != nil {
		t.Fatalf("record: %v", err)
	}
}

func TestAuditService_ByUser(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "lou@example.com", "pw")
	f.login(t, "lou@example.com", "pw")

	if _, err := f.audit.ByUser(context.Background(), ""); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.audit.ByUser(context.Background(), "nobody"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	entries, err := f.audit.ByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if entries[0].User == nil || entries[0].User.Email != "lou@example.com" {
		t.Fatalf("expected acting user to be embedded, got %+v", entries[0].User)
	}
}

func TestAuditService_ByAction_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i, desc := range []string{"first", "second"} {
		_ = f.audit.Record(ctx, domain.AuditEntry{Action: domain.AuditRead, Description: desc, Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}

	entries, err := f.audit.ByAction(ctx, "read")
	if err != nil {
		t.Fatalf("by action: %v", err)
	}
	if len(entries) != 2 || entries[0].Description != "second" {
		t.Fatalf("expected newest first, got %+v", entries)
	}
	if _, err := f.audit.ByAction(ctx, string(domain.AuditLogout)); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAuditService_PageAndCleanup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	f.audit.now = func() time.Time { return now }

	for _, age := range []int{40, 35, 5, 1} {
		_ = f.audit.Record(ctx, domain.AuditEntry{Action: domain.AuditRead, Description: "e", Timestamp: now.AddDate(0, 0, -age)})
	}

	page, err := f.audit.Page(ctx, 1, 3)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Total != 4 || len(page.Items) != 3 || page.Limit != 3 {
		t.Fatalf("unexpected page %+v", page)
	}

	if _, err := f.audit.Cleanup(ctx, 0); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error for days=0, got %v", err)
	}
	n, err := f.audit.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
}
