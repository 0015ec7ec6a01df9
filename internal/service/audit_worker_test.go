package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAuditWorker_ProcessesJob(t *testing.T) {
	auditor := &mockAuditor{}
	log := testLogger()

	aw := NewAuditWorker(auditor, log, 10)
	ctx, cancel := context.WithCancel(context.Background())
	go aw.Run(ctx)

	domainID := uuid.New()
	aw.Enqueue(&AuditJob{
		DomainID:   domainID,
		Action:     "project.create",
		EntityType: "project",
		EntityID:   "abc",
	})

	time.Sleep(50 * time.Millisecond)
	cancel()

	calls := auditor.getCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 audit call, got %d", len(calls))
	}
	if calls[0].Action != "project.create" {
		t.Errorf("action = %q, want %q", calls[0].Action, "project.create")
	}
	if calls[0].DomainID != domainID {
		t.Errorf("domain = %s, want %s", calls[0].DomainID, domainID)
	}
	if calls[0].EntityID != "abc" {
		t.Errorf("entity_id = %q, want %q", calls[0].EntityID, "abc")
	}
}

func TestAuditWorker_DropsWhenFull(t *testing.T) {
	auditor := &mockAuditor{}

	// Queue size 2, don't start the worker so it can't drain.
	aw := NewAuditWorker(auditor, testLogger(), 2)

	// Fill the queue.
	aw.Enqueue(&AuditJob{Action: "a"})
	aw.Enqueue(&AuditJob{Action: "b"})

	// This should be dropped (non-blocking).
	done := make(chan struct{})
	go func() {
		aw.Enqueue(&AuditJob{Action: "c"})
		close(done)
	}()

	select {
	case <-done:
		// Good, didn't block.
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked when queue was full")
	}

	// Only 2 in queue.
	if len(aw.jobs) != 2 {
		t.Errorf("queue len = %d, want 2", len(aw.jobs))
	}
}

func TestAuditWorker_StopDrains(t *testing.T) {
	auditor := &mockAuditor{}

	aw := NewAuditWorker(auditor, testLogger(), 100)

	// Enqueue before starting.
	for i := range 5 {
		aw.Enqueue(&AuditJob{Action: "drain", EntityID: string(rune('a' + i))})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		aw.Run(ctx)
		close(done)
	}()

	// Let worker start and process, then cancel to trigger drain.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run didn't return after cancel")
	}

	calls := auditor.getCalls()
	if len(calls) != 5 {
		t.Errorf("expected 5 drained audit calls, got %d", len(calls))
	}
}
