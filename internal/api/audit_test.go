package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/api"
	"github.com/corralhq/corral/internal/models"
)

func TestAuditQuery_ScopedToDomain(t *testing.T) {
	t.Parallel()

	var gotDomain uuid.UUID
	repo := &mockAuditRepo{
		queryFn: func(_ context.Context, domainID uuid.UUID, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
			gotDomain = domainID
			if opts.EntityType != "project" {
				t.Errorf("expected entity_type filter, got %q", opts.EntityType)
			}
			if opts.Limit != 50 {
				t.Errorf("expected default limit 50, got %d", opts.Limit)
			}

			return []models.AuditEntry{
				{ID: 1, Action: "create", EntityType: "project", EntityID: uuid.NewString()},
			}, true, nil
		},
	}

	r := newTestRouter()
	h := api.NewAuditHandler(repo, testLogger())
	r.GET("/audit", h.Query)

	w := doRequest(r, http.MethodGet, "/audit?entity_type=project", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if gotDomain != uuid.MustParse(testDomainID) {
		t.Errorf("expected the active domain to reach the repo, got %s", gotDomain)
	}

	var body struct {
		Data    []models.AuditEntry `json:"data"`
		HasMore bool                `json:"has_more"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(body.Data) != 1 || !body.HasMore {
		t.Errorf("unexpected page: data=%d has_more=%v", len(body.Data), body.HasMore)
	}
}

func TestAuditQuery_BadSince(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewAuditHandler(&mockAuditRepo{}, testLogger())
	r.GET("/audit", h.Query)

	w := doRequest(r, http.MethodGet, "/audit?since=yesterday", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuditPurge_DefaultRetention(t *testing.T) {
	t.Parallel()

	repo := &mockAuditRepo{
		purgeFn: func(_ context.Context, retentionDays int) (int, error) {
			if retentionDays != 90 {
				t.Errorf("expected default retention 90, got %d", retentionDays)
			}

			return 42, nil
		},
	}

	r := newTestRouter()
	h := api.NewAuditHandler(repo, testLogger())
	r.DELETE("/admin/audit", h.Purge)

	w := doRequest(r, http.MethodDelete, "/admin/audit", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Deleted       int `json:"deleted"`
		RetentionDays int `json:"retention_days"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body.Deleted != 42 || body.RetentionDays != 90 {
		t.Errorf("unexpected purge result: %+v", body)
	}
}

func TestAuditPurge_BadRetention(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewAuditHandler(&mockAuditRepo{}, testLogger())
	r.DELETE("/admin/audit", h.Purge)

	w := doRequest(r, http.MethodDelete, "/admin/audit?retention_days=0", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
