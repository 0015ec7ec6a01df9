package filter_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/filter"
	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/schema"
)

func TestSeek_ForwardSingleKey(t *testing.T) {
	q := compile(t, schema.Projects().Meta(), models.QueryRequest{}, filter.Options{})
	id := uuid.New()

	where, args, err := q.Seek([]any{id}, []string{"p.id"}, []any{id}, true)
	if err != nil {
		t.Fatalf("seek failed: %v", err)
	}

	want := "p.domain_id = $1 AND ((p.id > $2) OR (p.id = $3 AND NOT (p.id = $4)))"
	if where != want {
		t.Errorf("unexpected where:\n got %q\nwant %q", where, want)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
	if args[0] != testDomain || args[1] != id || args[3] != id {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestSeek_BackwardFlipsComparison(t *testing.T) {
	q := compile(t, schema.Projects().Meta(), models.QueryRequest{}, filter.Options{})
	id := uuid.New()

	where, _, err := q.Seek([]any{id}, []string{"p.id"}, []any{id}, false)
	if err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if !strings.Contains(where, "(p.id < $2)") {
		t.Errorf("expected reversed comparison, got %q", where)
	}
}

func TestSeek_MultiKeyTupleOrder(t *testing.T) {
	req := models.QueryRequest{Sorts: []models.SortSpec{
		{Path: "name", Descending: true},
		{Path: "budget"},
	}}
	q := compile(t, schema.Projects().Meta(), req, filter.Options{})
	id := uuid.New()

	where, args, err := q.Seek([]any{"Apollo", 12.5}, []string{"p.id"}, []any{id}, true)
	if err != nil {
		t.Fatalf("seek failed: %v", err)
	}

	want := "p.domain_id = $1 AND (" +
		"(p.name < $2) OR " +
		"(p.name = $3 AND p.budget > $4) OR " +
		"(p.name = $5 AND p.budget = $6 AND NOT (p.id = $7)))"
	if where != want {
		t.Errorf("unexpected where:\n got %q\nwant %q", where, want)
	}
	if len(args) != 7 {
		t.Fatalf("expected 7 args, got %d", len(args))
	}
	if args[1] != "Apollo" || args[3] != 12.5 || args[6] != id {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestSeek_DoesNotMutateCompiledArgs(t *testing.T) {
	q := compile(t, schema.Projects().Meta(), models.QueryRequest{}, filter.Options{})
	before := len(q.Args)

	if _, _, err := q.Seek([]any{uuid.New()}, []string{"p.id"}, []any{uuid.New()}, true); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if len(q.Args) != before {
		t.Errorf("seek must not grow the compiled args, got %d", len(q.Args))
	}
}

func TestSeek_RejectsMismatchedInputs(t *testing.T) {
	q := compile(t, schema.Projects().Meta(), models.QueryRequest{}, filter.Options{})

	if _, _, err := q.Seek([]any{}, []string{"p.id"}, []any{uuid.New()}, true); err == nil {
		t.Error("expected an error for missing key values")
	}
	if _, _, err := q.Seek([]any{uuid.New()}, nil, nil, true); err == nil {
		t.Error("expected an error for missing primary key")
	}
}
