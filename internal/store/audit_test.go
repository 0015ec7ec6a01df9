package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/store"
)

func TestAuditRecordAndQuery(t *testing.T) {
	base, domainID := setupTestBase(t)
	as := store.NewAuditStore(base)
	ctx := context.Background()

	entityID := uuid.NewString()
	err := as.RecordAudit(ctx, domainID, "create", "project", entityID, "tester",
		map[string]any{"code": "AUD-1"})
	if err != nil {
		t.Fatalf("RecordAudit: %v", err)
	}

	entries, hasMore, err := as.QueryAudit(ctx, domainID, models.AuditQueryOpts{
		EntityType: "project",
		EntityID:   entityID,
	})
	if err != nil {
		t.Fatalf("QueryAudit: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if hasMore {
		t.Error("hasMore = true, want false")
	}

	e := entries[0]
	if e.Action != "create" || e.EntityType != "project" || e.EntityID != entityID {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Actor != "tester" {
		t.Errorf("Actor = %q, want tester", e.Actor)
	}
	if e.Detail["code"] != "AUD-1" {
		t.Errorf("Detail[code] = %v, want AUD-1", e.Detail["code"])
	}
}

func TestAuditScopedToDomain(t *testing.T) {
	base, domainA := setupTestBase(t)
	_, domainB := setupTestBase(t)
	as := store.NewAuditStore(base)
	ctx := context.Background()

	if err := as.RecordAudit(ctx, domainA, "create", "contact", uuid.NewString(), "", nil); err != nil {
		t.Fatalf("RecordAudit: %v", err)
	}

	entries, _, err := as.QueryAudit(ctx, domainB, models.AuditQueryOpts{EntityType: "contact"})
	if err != nil {
		t.Fatalf("QueryAudit: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("domain B sees %d of domain A's entries, want 0", len(entries))
	}
}

func TestAuditPagination(t *testing.T) {
	base, domainID := setupTestBase(t)
	as := store.NewAuditStore(base)
	ctx := context.Background()

	entityID := uuid.NewString()
	for i := 0; i < 3; i++ {
		if err := as.RecordAudit(ctx, domainID, "update", "project", entityID, "", nil); err != nil {
			t.Fatalf("RecordAudit: %v", err)
		}
	}

	entries, hasMore, err := as.QueryAudit(ctx, domainID, models.AuditQueryOpts{
		EntityID: entityID,
		Limit:    2,
	})
	if err != nil {
		t.Fatalf("QueryAudit: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
	if !hasMore {
		t.Error("hasMore = false, want true")
	}
}
