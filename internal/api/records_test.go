package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/api"
	"github.com/corralhq/corral/internal/filter"
	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/service"
)

func newProjectRouter(repo *mockRecordRepo[models.Project]) *gin.Engine {
	r := newTestRouter()
	h := api.NewRecordHandler[models.Project, models.ProjectRequest](repo, "project", models.ErrProjectNotFound, testLogger())
	h.Register(r.Group("/projects"))

	return r
}

func TestProjectCreate_Valid(t *testing.T) {
	t.Parallel()

	var got *models.Project
	repo := &mockRecordRepo[models.Project]{
		createFn: func(_ context.Context, rec *models.Project) (*models.Project, error) {
			got = rec

			return rec, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects", `{"name":"Atlas","code":"ATL"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	if got == nil {
		t.Fatal("repo never received the record")
	}

	if got.ID == uuid.Nil {
		t.Error("expected a generated id")
	}

	if got.Status != models.StatusDraft {
		t.Errorf("expected default status %q, got %q", models.StatusDraft, got.Status)
	}

	var body models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body.Name != "Atlas" || body.Code != "ATL" {
		t.Errorf("unexpected record in response: %+v", body)
	}
}

func TestProjectCreate_InvalidJSON(t *testing.T) {
	t.Parallel()

	r := newProjectRouter(&mockRecordRepo[models.Project]{})
	w := doRequest(r, http.MethodPost, "/projects", `{"name":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectCreate_MissingName(t *testing.T) {
	t.Parallel()

	r := newProjectRouter(&mockRecordRepo[models.Project]{})
	w := doRequest(r, http.MethodPost, "/projects", `{"code":"ATL"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["code"] != "validation_error" {
		t.Errorf("expected validation_error, got %q", body["code"])
	}
}

func TestProjectCreate_ForeignReference(t *testing.T) {
	t.Parallel()

	// A referenced parent owned by another domain is refused outright,
	// not reported as missing.
	repo := &mockRecordRepo[models.Project]{
		createFn: func(_ context.Context, _ *models.Project) (*models.Project, error) {
			return nil, fmt.Errorf("category: %w", models.ErrDomainViolation)
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects", `{"name":"Atlas","code":"ATL"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["code"] != "domain_violation" {
		t.Errorf("expected domain_violation, got %q", body["code"])
	}
}

func TestProjectCreate_MissingReference(t *testing.T) {
	t.Parallel()

	// A miss on a referenced record is a payload problem, so it comes
	// back as a validation error rather than a 404.
	catID := uuid.New()
	repo := &mockRecordRepo[models.Project]{
		createFn: func(_ context.Context, _ *models.Project) (*models.Project, error) {
			return nil, fmt.Errorf("category %s: %w", catID, models.ErrRecordNotFound)
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects", `{"name":"Atlas","code":"ATL"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "validation_error") {
		t.Errorf("expected validation_error in body: %s", w.Body.String())
	}
}

func TestProjectCreate_Duplicate(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		createFn: func(_ context.Context, _ *models.Project) (*models.Project, error) {
			return nil, models.ErrDuplicateKey
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects", `{"name":"Atlas","code":"ATL"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectBulkCreate_OK(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		bulkCreateFn: func(_ context.Context, recs []*models.Project) ([]*models.Project, error) {
			return recs, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects/bulk",
		`[{"name":"Atlas","code":"ATL"},{"name":"Borealis","code":"BOR"}]`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body.Count != 2 {
		t.Errorf("expected count=2, got %d", body.Count)
	}
}

func TestProjectBulkCreate_Empty(t *testing.T) {
	t.Parallel()

	r := newProjectRouter(&mockRecordRepo[models.Project]{})
	w := doRequest(r, http.MethodPost, "/projects/bulk", `[]`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectBulkCreate_InvalidItem(t *testing.T) {
	t.Parallel()

	r := newProjectRouter(&mockRecordRepo[models.Project]{})
	w := doRequest(r, http.MethodPost, "/projects/bulk",
		`[{"name":"Atlas","code":"ATL"},{"name":"Borealis"}]`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "item 1") {
		t.Errorf("expected the failing item index in the message: %s", w.Body.String())
	}
}

func TestProjectGet_OK(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	repo := &mockRecordRepo[models.Project]{
		getFn: func(_ context.Context, got uuid.UUID) (*models.Project, error) {
			if got != id {
				t.Errorf("expected id %s, got %s", id, got)
			}

			return &models.Project{ID: got, Name: "Atlas", Code: "ATL"}, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodGet, "/projects/"+id.String(), "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectGet_CanonicalID(t *testing.T) {
	t.Parallel()

	// The 32-hex form used by cursors is accepted anywhere an id is.
	id := uuid.New()
	repo := &mockRecordRepo[models.Project]{
		getFn: func(_ context.Context, got uuid.UUID) (*models.Project, error) {
			if got != id {
				t.Errorf("expected id %s, got %s", id, got)
			}

			return &models.Project{ID: got, Name: "Atlas", Code: "ATL"}, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodGet, "/projects/"+models.CanonicalID(id), "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectGet_BadID(t *testing.T) {
	t.Parallel()

	r := newProjectRouter(&mockRecordRepo[models.Project]{})
	w := doRequest(r, http.MethodGet, "/projects/not-a-uuid", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectGet_NotFound(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		getFn: func(_ context.Context, _ uuid.UUID) (*models.Project, error) {
			return nil, models.ErrProjectNotFound
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodGet, "/projects/"+uuid.NewString(), "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectGet_ForeignDomain(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		getFn: func(_ context.Context, _ uuid.UUID) (*models.Project, error) {
			return nil, models.ErrDomainViolation
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodGet, "/projects/"+uuid.NewString(), "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectReplace_Changed(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		replaceFn: func(_ context.Context, id uuid.UUID, rec *models.Project) (*models.Project, bool, error) {
			rec.ID = id

			return rec, true, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPut, "/projects/"+uuid.NewString(), `{"name":"Atlas","code":"ATL"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := w.Header().Get("X-Record-Changed"); got != "true" {
		t.Errorf("expected X-Record-Changed=true, got %q", got)
	}
}

func TestProjectReplace_Unchanged(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		replaceFn: func(_ context.Context, id uuid.UUID, rec *models.Project) (*models.Project, bool, error) {
			rec.ID = id

			return rec, false, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPut, "/projects/"+uuid.NewString(), `{"name":"Atlas","code":"ATL"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := w.Header().Get("X-Record-Changed"); got != "false" {
		t.Errorf("expected X-Record-Changed=false, got %q", got)
	}
}

func TestProjectDelete_OK(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		deleteFn: func(_ context.Context, _ uuid.UUID) error {
			return nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodDelete, "/projects/"+uuid.NewString(), "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["deleted"] != true {
		t.Errorf("expected deleted=true, got %v", body["deleted"])
	}
}

func TestProjectQuery_OK(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		queryFn: func(_ context.Context, req *models.QueryRequest) (*service.QueryResult[models.Project], error) {
			if len(req.Filters) != 1 {
				t.Errorf("expected 1 filter, got %d", len(req.Filters))
			}

			return &service.QueryResult[models.Project]{
				Items:  []*models.Project{{Name: "Atlas"}, {Name: "Borealis"}},
				Total:  7,
				Offset: 0,
			}, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects/query",
		`{"filters":[{"path":"status","action":"equals","values":["active"]}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var items []models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}

	if got := w.Header().Get("X-Total-Count"); got != "7" {
		t.Errorf("expected X-Total-Count=7, got %q", got)
	}

	if got := w.Header().Get("X-Offset"); got != "0" {
		t.Errorf("expected X-Offset=0, got %q", got)
	}
}

func TestProjectList_Paginated(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		queryFn: func(_ context.Context, req *models.QueryRequest) (*service.QueryResult[models.Project], error) {
			if req.Page != 2 || req.Limit() != 10 {
				t.Errorf("expected page=2 length=10, got page=%d length=%d", req.Page, req.Limit())
			}

			return &service.QueryResult[models.Project]{
				Items:  []*models.Project{{Name: "Atlas"}},
				Total:  21,
				Offset: 20,
			}, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodGet, "/projects?page=2&length=10", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := w.Header().Get("X-Total-Count"); got != "21" {
		t.Errorf("expected X-Total-Count=21, got %q", got)
	}

	if got := w.Header().Get("X-Offset"); got != "20" {
		t.Errorf("expected X-Offset=20, got %q", got)
	}
}

func TestProjectList_EmptyIsJSONArray(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		queryFn: func(_ context.Context, _ *models.QueryRequest) (*service.QueryResult[models.Project], error) {
			return &service.QueryResult[models.Project]{}, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodGet, "/projects", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty array body, got %s", w.Body.String())
	}
}

func TestProjectQuery_UnknownAction(t *testing.T) {
	t.Parallel()

	r := newProjectRouter(&mockRecordRepo[models.Project]{})
	w := doRequest(r, http.MethodPost, "/projects/query",
		`{"filters":[{"path":"status","action":"regex","values":["a.*"]}]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectQuery_BadFilterPath(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		queryFn: func(_ context.Context, _ *models.QueryRequest) (*service.QueryResult[models.Project], error) {
			return nil, &filter.Error{Path: "nope", Action: "equals", Reason: "unknown path"}
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects/query",
		`{"filters":[{"path":"nope","action":"equals","values":["x"]}]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["code"] != "invalid_filter" {
		t.Errorf("expected invalid_filter, got %q", body["code"])
	}

	if !strings.Contains(body["message"], "nope") {
		t.Errorf("expected the offending path in the message: %s", body["message"])
	}
}

func TestProjectNeighbors_OK(t *testing.T) {
	t.Parallel()

	anchor := uuid.New()
	next := models.CanonicalID(uuid.New())
	prev := models.CanonicalID(uuid.New())
	repo := &mockRecordRepo[models.Project]{
		getFn: func(_ context.Context, id uuid.UUID) (*models.Project, error) {
			return &models.Project{ID: id, Name: "Atlas", Code: "ATL"}, nil
		},
		neighborsFn: func(_ context.Context, req *models.NeighborRequest) (*models.Neighbors, error) {
			if req.ID == "" {
				t.Error("expected anchor id in request")
			}

			return &models.Neighbors{Next: next, Previous: prev}, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects/neighbors",
		`{"id":"`+anchor.String()+`","sorts":[{"path":"name"}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := w.Header().Get("X-Next-Cursor"); got != next {
		t.Errorf("expected X-Next-Cursor=%s, got %q", next, got)
	}

	if got := w.Header().Get("X-Previous-Cursor"); got != prev {
		t.Errorf("expected X-Previous-Cursor=%s, got %q", prev, got)
	}

	var body models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body.ID != anchor {
		t.Errorf("expected the anchor record in the body, got %s", body.ID)
	}
}

func TestProjectNeighbors_AtEdge(t *testing.T) {
	t.Parallel()

	// An anchor at the edge of the result set, or one the filters exclude,
	// yields no cursor headers rather than an error.
	repo := &mockRecordRepo[models.Project]{
		getFn: func(_ context.Context, id uuid.UUID) (*models.Project, error) {
			return &models.Project{ID: id, Name: "Atlas", Code: "ATL"}, nil
		},
		neighborsFn: func(_ context.Context, _ *models.NeighborRequest) (*models.Neighbors, error) {
			return &models.Neighbors{}, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects/neighbors", `{"id":"`+uuid.NewString()+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if _, ok := w.Header()["X-Next-Cursor"]; ok {
		t.Error("expected no X-Next-Cursor header")
	}

	if _, ok := w.Header()["X-Previous-Cursor"]; ok {
		t.Error("expected no X-Previous-Cursor header")
	}
}

func TestProjectNeighbors_ForeignAnchor(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		getFn: func(_ context.Context, _ uuid.UUID) (*models.Project, error) {
			return nil, models.ErrDomainViolation
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects/neighbors", `{"id":"`+uuid.NewString()+`"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectExport_CSV(t *testing.T) {
	t.Parallel()

	repo := &mockRecordRepo[models.Project]{
		exportFn: func(_ context.Context, _ *models.QueryRequest, format service.ExportFormat) (*service.ExportResult, error) {
			if format != service.FormatCSV {
				t.Errorf("expected csv format, got %q", format)
			}

			return &service.ExportResult{
				Data:        []byte("name,code\nAtlas,ATL\n"),
				ContentType: "text/csv",
				Filename:    "projects.csv",
			}, nil
		},
	}

	r := newProjectRouter(repo)
	w := doRequest(r, http.MethodPost, "/projects/export", `{}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}

	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "projects.csv") {
		t.Errorf("expected attachment filename, got %q", cd)
	}
}

func TestProjectExport_UnknownFormat(t *testing.T) {
	t.Parallel()

	r := newProjectRouter(&mockRecordRepo[models.Project]{})
	w := doRequest(r, http.MethodPost, "/projects/export?format=pdf", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
