package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/models"
)

// The built-in catalog. Descriptors are assembled once at package load;
// ValidateCatalog runs at startup so a broken entry fails fast.
var (
	projects   = buildProjects()
	contacts   = buildContacts()
	categories = buildCategories()
	tasks      = buildTasks()
)

// Projects returns the project descriptor.
func Projects() *Descriptor[models.Project] { return projects }

// Contacts returns the contact descriptor.
func Contacts() *Descriptor[models.Contact] { return contacts }

// Categories returns the category descriptor.
func Categories() *Descriptor[models.Category] { return categories }

// Tasks returns the task descriptor.
func Tasks() *Descriptor[models.Task] { return tasks }

// Resources lists the catalog's resource names in registration order.
func Resources() []string {
	return []string{projects.Name, contacts.Name, categories.Name, tasks.Name}
}

// ValidateCatalog checks every built-in descriptor. Called from main.
func ValidateCatalog() error {
	if err := projects.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := contacts.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := categories.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := tasks.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

func buildProjects() *Descriptor[models.Project] {
	return &Descriptor[models.Project]{
		Name:   "projects",
		Entity: "project",
		Table:  "projects",
		Alias:  "p",

		DomainColumn: "domain_id",
		Domain:       func(p *models.Project) uuid.UUID { return p.DomainID },
		SetDomain:    func(p *models.Project, id uuid.UUID) { p.DomainID = id },

		New:      func() *models.Project { return &models.Project{} },
		NotFound: models.ErrProjectNotFound,

		Fields: []Field[models.Project]{
			{
				FieldMeta: FieldMeta{Name: "id", Column: "id", Kind: KindUUID, PrimaryKey: true, Filterable: true},
				Get:       func(p *models.Project) any { return p.ID },
				Set:       func(p *models.Project, v any) { p.ID, _ = v.(uuid.UUID) },
				Ptr:       func(p *models.Project) any { return &p.ID },
			},
			{
				FieldMeta: FieldMeta{Name: "domain_id", Column: "domain_id", Kind: KindUUID, NavKey: true},
				Get:       func(p *models.Project) any { return p.DomainID },
				Set:       func(p *models.Project, v any) { p.DomainID, _ = v.(uuid.UUID) },
				Ptr:       func(p *models.Project) any { return &p.DomainID },
			},
			{
				FieldMeta: FieldMeta{Name: "name", Column: "name", Kind: KindString, Filterable: true},
				Get:       func(p *models.Project) any { return p.Name },
				Set:       func(p *models.Project, v any) { p.Name, _ = v.(string) },
				Ptr:       func(p *models.Project) any { return &p.Name },
			},
			{
				FieldMeta: FieldMeta{Name: "code", Column: "code", Kind: KindString, Filterable: true, Protected: true},
				Get:       func(p *models.Project) any { return p.Code },
				Set:       func(p *models.Project, v any) { p.Code, _ = v.(string) },
				Ptr:       func(p *models.Project) any { return &p.Code },
			},
			{
				FieldMeta: FieldMeta{
					Name: "status", Column: "status", Kind: KindEnum, Filterable: true,
					Enum: []string{models.StatusDraft, models.StatusActive, models.StatusArchived},
				},
				Get: func(p *models.Project) any { return p.Status },
				Set: func(p *models.Project, v any) { p.Status, _ = v.(string) },
				Ptr: func(p *models.Project) any { return &p.Status },
			},
			{
				FieldMeta: FieldMeta{Name: "budget", Column: "budget", Kind: KindFloat, Filterable: true, Nullable: true},
				Get:       func(p *models.Project) any { return p.Budget },
				Set:       func(p *models.Project, v any) { p.Budget, _ = v.(*float64) },
				Ptr:       func(p *models.Project) any { return &p.Budget },
			},
			{
				FieldMeta: FieldMeta{Name: "headcount", Column: "headcount", Kind: KindInt, Filterable: true, Nullable: true},
				Get:       func(p *models.Project) any { return p.Headcount },
				Set:       func(p *models.Project, v any) { p.Headcount, _ = v.(*int64) },
				Ptr:       func(p *models.Project) any { return &p.Headcount },
			},
			{
				FieldMeta: FieldMeta{Name: "starts_on", Column: "starts_on", Kind: KindTime, Filterable: true, Nullable: true},
				Get:       func(p *models.Project) any { return p.StartsOn },
				Set:       func(p *models.Project, v any) { p.StartsOn, _ = v.(*time.Time) },
				Ptr:       func(p *models.Project) any { return &p.StartsOn },
			},
			{
				FieldMeta: FieldMeta{Name: "notes", Column: "notes", Kind: KindString},
				Get:       func(p *models.Project) any { return p.Notes },
				Set:       func(p *models.Project, v any) { p.Notes, _ = v.(string) },
				Ptr:       func(p *models.Project) any { return &p.Notes },
			},
			{
				FieldMeta: FieldMeta{Name: "category_id", Column: "category_id", Kind: KindUUID, Filterable: true, Nullable: true, NavKey: true},
				Get:       func(p *models.Project) any { return p.CategoryID },
				Set:       func(p *models.Project, v any) { p.CategoryID, _ = v.(*uuid.UUID) },
				Ptr:       func(p *models.Project) any { return &p.CategoryID },
			},
			{
				FieldMeta: FieldMeta{Name: "lead_id", Column: "lead_id", Kind: KindUUID, Filterable: true, Nullable: true, NavKey: true},
				Get:       func(p *models.Project) any { return p.LeadID },
				Set:       func(p *models.Project, v any) { p.LeadID, _ = v.(*uuid.UUID) },
				Ptr:       func(p *models.Project) any { return &p.LeadID },
			},
			{
				FieldMeta: FieldMeta{Name: "created_at", Column: "created_at", Kind: KindTime, Filterable: true, RowTimestamp: true},
				Get:       func(p *models.Project) any { return p.CreatedAt },
				Set:       func(p *models.Project, v any) { p.CreatedAt, _ = v.(time.Time) },
				Ptr:       func(p *models.Project) any { return &p.CreatedAt },
			},
			{
				FieldMeta: FieldMeta{Name: "updated_at", Column: "updated_at", Kind: KindTime, Filterable: true, RowTimestamp: true},
				Get:       func(p *models.Project) any { return p.UpdatedAt },
				Set:       func(p *models.Project, v any) { p.UpdatedAt, _ = v.(time.Time) },
				Ptr:       func(p *models.Project) any { return &p.UpdatedAt },
			},
		},

		Navs: []Navigation[models.Project]{
			{
				NavMeta:      categoryNav("category_id"),
				ResolveByRef: true,
				FK:           func(p *models.Project) *uuid.UUID { return p.CategoryID },
				SetFK:        func(p *models.Project, v *uuid.UUID) { p.CategoryID = v },
			},
			{
				NavMeta:      leadNav("lead_id"),
				ResolveByRef: true,
				FK:           func(p *models.Project) *uuid.UUID { return p.LeadID },
				SetFK:        func(p *models.Project, v *uuid.UUID) { p.LeadID = v },
			},
		},
	}
}

// Navigation metadata shared between descriptors. The category and lead
// edges appear both directly on projects and one hop deeper under a task's
// project navigation.
func categoryNav(fkColumn string) NavMeta {
	return NavMeta{
		Name:         "category",
		Alias:        "nc",
		FKColumn:     fkColumn,
		Table:        "categories",
		KeyColumn:    "id",
		DomainColumn: "domain_id",
		Fields: []FieldMeta{
			{Name: "name", Column: "name", Kind: KindString, Filterable: true},
			{Name: "rank", Column: "rank", Kind: KindInt, Filterable: true},
		},
	}
}

func leadNav(fkColumn string) NavMeta {
	return NavMeta{
		Name:         "lead",
		Alias:        "nl",
		FKColumn:     fkColumn,
		Table:        "contacts",
		KeyColumn:    "id",
		DomainColumn: "domain_id",
		Fields: []FieldMeta{
			{Name: "first_name", Column: "first_name", Kind: KindString, Filterable: true},
			{Name: "last_name", Column: "last_name", Kind: KindString, Filterable: true},
			{Name: "email", Column: "email", Kind: KindString, Filterable: true},
			{Name: "age", Column: "age", Kind: KindInt, Filterable: true, Nullable: true},
		},
	}
}

func buildContacts() *Descriptor[models.Contact] {
	return &Descriptor[models.Contact]{
		Name:   "contacts",
		Entity: "contact",
		Table:  "contacts",
		Alias:  "c",

		DomainColumn: "domain_id",
		Domain:       func(c *models.Contact) uuid.UUID { return c.DomainID },
		SetDomain:    func(c *models.Contact, id uuid.UUID) { c.DomainID = id },

		New:      func() *models.Contact { return &models.Contact{} },
		NotFound: models.ErrContactNotFound,

		Fields: []Field[models.Contact]{
			{
				FieldMeta: FieldMeta{Name: "id", Column: "id", Kind: KindUUID, PrimaryKey: true, Filterable: true},
				Get:       func(c *models.Contact) any { return c.ID },
				Set:       func(c *models.Contact, v any) { c.ID, _ = v.(uuid.UUID) },
				Ptr:       func(c *models.Contact) any { return &c.ID },
			},
			{
				FieldMeta: FieldMeta{Name: "domain_id", Column: "domain_id", Kind: KindUUID, NavKey: true},
				Get:       func(c *models.Contact) any { return c.DomainID },
				Set:       func(c *models.Contact, v any) { c.DomainID, _ = v.(uuid.UUID) },
				Ptr:       func(c *models.Contact) any { return &c.DomainID },
			},
			{
				FieldMeta: FieldMeta{Name: "first_name", Column: "first_name", Kind: KindString, Filterable: true},
				Get:       func(c *models.Contact) any { return c.FirstName },
				Set:       func(c *models.Contact, v any) { c.FirstName, _ = v.(string) },
				Ptr:       func(c *models.Contact) any { return &c.FirstName },
			},
			{
				FieldMeta: FieldMeta{Name: "last_name", Column: "last_name", Kind: KindString, Filterable: true},
				Get:       func(c *models.Contact) any { return c.LastName },
				Set:       func(c *models.Contact, v any) { c.LastName, _ = v.(string) },
				Ptr:       func(c *models.Contact) any { return &c.LastName },
			},
			{
				FieldMeta: FieldMeta{Name: "email", Column: "email", Kind: KindString, Filterable: true},
				Get:       func(c *models.Contact) any { return c.Email },
				Set:       func(c *models.Contact, v any) { c.Email, _ = v.(string) },
				Ptr:       func(c *models.Contact) any { return &c.Email },
			},
			{
				FieldMeta: FieldMeta{Name: "age", Column: "age", Kind: KindInt, Filterable: true, Nullable: true},
				Get:       func(c *models.Contact) any { return c.Age },
				Set:       func(c *models.Contact, v any) { c.Age, _ = v.(*int64) },
				Ptr:       func(c *models.Contact) any { return &c.Age },
			},
			{
				FieldMeta: FieldMeta{Name: "created_at", Column: "created_at", Kind: KindTime, Filterable: true, RowTimestamp: true},
				Get:       func(c *models.Contact) any { return c.CreatedAt },
				Set:       func(c *models.Contact, v any) { c.CreatedAt, _ = v.(time.Time) },
				Ptr:       func(c *models.Contact) any { return &c.CreatedAt },
			},
			{
				FieldMeta: FieldMeta{Name: "updated_at", Column: "updated_at", Kind: KindTime, Filterable: true, RowTimestamp: true},
				Get:       func(c *models.Contact) any { return c.UpdatedAt },
				Set:       func(c *models.Contact, v any) { c.UpdatedAt, _ = v.(time.Time) },
				Ptr:       func(c *models.Contact) any { return &c.UpdatedAt },
			},
		},
	}
}

func buildCategories() *Descriptor[models.Category] {
	return &Descriptor[models.Category]{
		Name:   "categories",
		Entity: "category",
		Table:  "categories",
		Alias:  "cat",

		DomainColumn: "domain_id",
		Domain:       func(c *models.Category) uuid.UUID { return c.DomainID },
		SetDomain:    func(c *models.Category, id uuid.UUID) { c.DomainID = id },

		New:      func() *models.Category { return &models.Category{} },
		NotFound: models.ErrCategoryNotFound,

		Fields: []Field[models.Category]{
			{
				FieldMeta: FieldMeta{Name: "id", Column: "id", Kind: KindUUID, PrimaryKey: true, Filterable: true},
				Get:       func(c *models.Category) any { return c.ID },
				Set:       func(c *models.Category, v any) { c.ID, _ = v.(uuid.UUID) },
				Ptr:       func(c *models.Category) any { return &c.ID },
			},
			{
				FieldMeta: FieldMeta{Name: "domain_id", Column: "domain_id", Kind: KindUUID, NavKey: true},
				Get:       func(c *models.Category) any { return c.DomainID },
				Set:       func(c *models.Category, v any) { c.DomainID, _ = v.(uuid.UUID) },
				Ptr:       func(c *models.Category) any { return &c.DomainID },
			},
			{
				FieldMeta: FieldMeta{Name: "name", Column: "name", Kind: KindString, Filterable: true},
				Get:       func(c *models.Category) any { return c.Name },
				Set:       func(c *models.Category, v any) { c.Name, _ = v.(string) },
				Ptr:       func(c *models.Category) any { return &c.Name },
			},
			{
				FieldMeta: FieldMeta{Name: "rank", Column: "rank", Kind: KindInt, Filterable: true},
				Get:       func(c *models.Category) any { return c.Rank },
				Set:       func(c *models.Category, v any) { c.Rank, _ = v.(int64) },
				Ptr:       func(c *models.Category) any { return &c.Rank },
			},
			{
				FieldMeta: FieldMeta{Name: "created_at", Column: "created_at", Kind: KindTime, Filterable: true, RowTimestamp: true},
				Get:       func(c *models.Category) any { return c.CreatedAt },
				Set:       func(c *models.Category, v any) { c.CreatedAt, _ = v.(time.Time) },
				Ptr:       func(c *models.Category) any { return &c.CreatedAt },
			},
			{
				FieldMeta: FieldMeta{Name: "updated_at", Column: "updated_at", Kind: KindTime, Filterable: true, RowTimestamp: true},
				Get:       func(c *models.Category) any { return c.UpdatedAt },
				Set:       func(c *models.Category, v any) { c.UpdatedAt, _ = v.(time.Time) },
				Ptr:       func(c *models.Category) any { return &c.UpdatedAt },
			},
		},
	}
}

func buildTasks() *Descriptor[models.Task] {
	return &Descriptor[models.Task]{
		Name:   "tasks",
		Entity: "task",
		Table:  "tasks",
		Alias:  "t",

		// Tasks have no domain column; the parent project carries it.
		DomainVia: "project",

		New:      func() *models.Task { return &models.Task{} },
		NotFound: models.ErrTaskNotFound,

		Fields: []Field[models.Task]{
			{
				FieldMeta: FieldMeta{Name: "id", Column: "id", Kind: KindUUID, PrimaryKey: true, Filterable: true},
				Get:       func(t *models.Task) any { return t.ID },
				Set:       func(t *models.Task, v any) { t.ID, _ = v.(uuid.UUID) },
				Ptr:       func(t *models.Task) any { return &t.ID },
			},
			{
				FieldMeta: FieldMeta{Name: "project_id", Column: "project_id", Kind: KindUUID, Filterable: true, NavKey: true},
				Get:       func(t *models.Task) any { return t.ProjectID },
				Set:       func(t *models.Task, v any) { t.ProjectID, _ = v.(uuid.UUID) },
				Ptr:       func(t *models.Task) any { return &t.ProjectID },
			},
			{
				FieldMeta: FieldMeta{Name: "title", Column: "title", Kind: KindString, Filterable: true},
				Get:       func(t *models.Task) any { return t.Title },
				Set:       func(t *models.Task, v any) { t.Title, _ = v.(string) },
				Ptr:       func(t *models.Task) any { return &t.Title },
			},
			{
				FieldMeta: FieldMeta{Name: "done", Column: "done", Kind: KindBool, Filterable: true},
				Get:       func(t *models.Task) any { return t.Done },
				Set:       func(t *models.Task, v any) { t.Done, _ = v.(bool) },
				Ptr:       func(t *models.Task) any { return &t.Done },
			},
			{
				FieldMeta: FieldMeta{Name: "due_on", Column: "due_on", Kind: KindTime, Filterable: true, Nullable: true},
				Get:       func(t *models.Task) any { return t.DueOn },
				Set:       func(t *models.Task, v any) { t.DueOn, _ = v.(*time.Time) },
				Ptr:       func(t *models.Task) any { return &t.DueOn },
			},
			{
				FieldMeta: FieldMeta{Name: "created_at", Column: "created_at", Kind: KindTime, Filterable: true, RowTimestamp: true},
				Get:       func(t *models.Task) any { return t.CreatedAt },
				Set:       func(t *models.Task, v any) { t.CreatedAt, _ = v.(time.Time) },
				Ptr:       func(t *models.Task) any { return &t.CreatedAt },
			},
			{
				FieldMeta: FieldMeta{Name: "updated_at", Column: "updated_at", Kind: KindTime, Filterable: true, RowTimestamp: true},
				Get:       func(t *models.Task) any { return t.UpdatedAt },
				Set:       func(t *models.Task, v any) { t.UpdatedAt, _ = v.(time.Time) },
				Ptr:       func(t *models.Task) any { return &t.UpdatedAt },
			},
		},

		Navs: []Navigation[models.Task]{
			{
				NavMeta: NavMeta{
					Name:         "project",
					Alias:        "pr",
					FKColumn:     "project_id",
					Required:     true,
					Table:        "projects",
					KeyColumn:    "id",
					DomainColumn: "domain_id",
					Fields: []FieldMeta{
						{Name: "name", Column: "name", Kind: KindString, Filterable: true},
						{Name: "code", Column: "code", Kind: KindString, Filterable: true},
						{
							Name: "status", Column: "status", Kind: KindEnum, Filterable: true,
							Enum: []string{models.StatusDraft, models.StatusActive, models.StatusArchived},
						},
						{Name: "budget", Column: "budget", Kind: KindFloat, Filterable: true, Nullable: true},
						{Name: "starts_on", Column: "starts_on", Kind: KindTime, Filterable: true, Nullable: true},
					},
					// Chained hops: task filters can reach the project's
					// category and lead.
					Navs: []NavMeta{
						categoryNav("category_id"),
						leadNav("lead_id"),
					},
				},
				ResolveByRef: true,
				FK:           func(t *models.Task) *uuid.UUID { return &t.ProjectID },
				SetFK: func(t *models.Task, v *uuid.UUID) {
					if v != nil {
						t.ProjectID = *v
					}
				},
			},
		},
	}
}
