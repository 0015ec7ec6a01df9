package client

import "time"

// Project is a record in the projects collection.
type Project struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Code       string     `json:"code"`
	Status     string     `json:"status"`
	Budget     *float64   `json:"budget,omitempty"`
	Headcount  *int64     `json:"headcount,omitempty"`
	StartsOn   *time.Time `json:"starts_on,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CategoryID *string    `json:"category_id,omitempty"`
	LeadID     *string    `json:"lead_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ProjectRequest is the payload for creating or replacing a project.
// A zero ID lets the server assign one.
type ProjectRequest struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`
	Code       string     `json:"code"`
	Status     string     `json:"status"`
	Budget     *float64   `json:"budget,omitempty"`
	Headcount  *int64     `json:"headcount,omitempty"`
	StartsOn   *time.Time `json:"starts_on,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CategoryID *string    `json:"category_id,omitempty"`
	LeadID     *string    `json:"lead_id,omitempty"`
}

// Contact is a record in the contacts collection.
type Contact struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Age       *int64    `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactRequest is the payload for creating or replacing a contact.
type ContactRequest struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Age       *int64 `json:"age,omitempty"`
}

// Category is a record in the categories collection.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rank      int64     `json:"rank"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryRequest is the payload for creating or replacing a category.
type CategoryRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Rank int64  `json:"rank"`
}

// Task is a record in the tasks collection. Tasks belong to a project and
// inherit its domain, so the project must be visible to the caller's key.
type Task struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Title     string     `json:"title"`
	Done      bool       `json:"done"`
	DueOn     *time.Time `json:"due_on,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskRequest is the payload for creating or replacing a task.
type TaskRequest struct {
	ID        string     `json:"id,omitempty"`
	ProjectID string     `json:"project_id"`
	Title     string     `json:"title"`
	Done      bool       `json:"done"`
	DueOn     *time.Time `json:"due_on,omitempty"`
}

// Filter actions accepted by the query endpoints. Presence checks take no
// values; the rest compare each value and match on any of them.
const (
	Exists        = "exists"
	IsNull        = "is_null"
	IsNullOrEmpty = "is_null_or_empty"
	StartsWith    = "starts_with"
	Contains      = "contains"
	EndsWith      = "ends_with"
	Equals        = "equals"
	NotEquals     = "not_equals"
	Greater       = "greater"
	GreaterEqual  = "greater_equal"
	Less          = "less"
	LessEqual     = "less_equal"
)

// PropertyFilter matches one field path against one or more raw values.
// Values within one filter combine with OR; separate filters combine with AND.
type PropertyFilter struct {
	Path   string   `json:"path"`
	Action string   `json:"action"`
	Values []string `json:"values,omitempty"`
}

// SortSpec orders results by one field path.
type SortSpec struct {
	Path       string `json:"path"`
	Descending bool   `json:"desc,omitempty"`
}

// QueryRequest filters, sorts and paginates a collection. Paths may dot
// through navigation fields ("category.name") or name composites
// ("full_name"). Page numbering starts at 0; a nil Length with page 0
// returns the whole result set.
type QueryRequest struct {
	Filters []PropertyFilter `json:"filters,omitempty"`
	Sorts   []SortSpec       `json:"sorts,omitempty"`
	Search  string           `json:"search,omitempty"`
	Page    int              `json:"page,omitempty"`
	Length  *int             `json:"length,omitempty"`
}

// neighborRequest is the body of the neighbors endpoint: a query plus the
// anchor record's ID.
type neighborRequest struct {
	QueryRequest
	ID string `json:"id"`
}

// Page holds one page of records plus the totals the server reports in the
// X-Total-Count and X-Offset headers. Total counts all matches before
// pagination.
type Page[T any] struct {
	Items  []T
	Total  int
	Offset int
}

// Neighbors holds the cursors of the records adjacent to an anchor within an
// ordered result set, taken from the X-Next-Cursor and X-Previous-Cursor
// headers. A cursor is the neighboring record's primary key; an absent
// neighbor is an empty string.
type Neighbors struct {
	Next     string
	Previous string
}

// ExportResult is a rendered export file.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Domain is a tenant. Every record belongs to exactly one domain and API
// keys are scoped to theirs.
type Domain struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DomainWithKey is a domain plus its plaintext API key. The key is returned
// only on create and rotate; the server stores a hash.
type DomainWithKey struct {
	Domain
	APIKey string `json:"api_key"`
}

// UpdateDomainRequest is the payload for renaming or (de)activating a domain.
type UpdateDomainRequest struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         int64          `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Actor      string         `json:"actor,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditQueryOptions holds parameters for querying audit logs.
type AuditQueryOptions struct {
	EntityType string
	EntityID   string
	Action     string
	Since      *time.Time
	Limit      int
	Offset     int
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// StatsResponse is returned by the stats endpoint.
type StatsResponse struct {
	Projects     int `json:"projects"`
	Contacts     int `json:"contacts"`
	Categories   int `json:"categories"`
	Tasks        int `json:"tasks"`
	AuditEntries int `json:"audit_entries"`
}
