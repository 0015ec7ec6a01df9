// Package schema describes the mapped entities of the record service: per
// entity a descriptor table of typed fields, navigations and domain scoping.
// Descriptors are built once at startup and drive filtering, persistence and
// the structural copy/equality manipulator, so nothing in the hot path needs
// runtime type introspection.
package schema

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is the storage type of a scalar field. It decides which filter
// actions apply and how raw string values are converted for comparison.
type Kind int

// Field kinds.
const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindUUID
	KindTime
	KindEnum
)

// String returns the kind's name for error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindUUID:
		return "uuid"
	case KindTime:
		return "timestamp"
	case KindEnum:
		return "enum"
	}
	return "unknown"
}

// FieldMeta is the untyped description of a scalar field, shared between the
// owning descriptor and navigation targets.
type FieldMeta struct {
	// Name is the wire name: the JSON key and the filter path segment.
	Name string
	// Column is the SQL column name.
	Column string
	Kind   Kind
	// PrimaryKey fields form the default ordering and the neighbor tie-break.
	PrimaryKey bool
	// Filterable opts the field into dynamic filtering and sorting.
	Filterable bool
	Nullable   bool
	// Protected fields are set at create time and skipped by the manipulator.
	Protected bool
	// RowTimestamp fields are maintained by the database and skipped by both
	// the manipulator and insert/update statements.
	RowTimestamp bool
	// NavKey marks a foreign key column owned by a navigation. Skipped by
	// the manipulator's field loop; the navigation rules decide how it moves.
	NavKey bool
	// Enum lists the canonical values for KindEnum fields.
	Enum []string
}

// Field binds a FieldMeta to typed accessors over the record type.
type Field[T any] struct {
	FieldMeta

	// Get reads the field value.
	Get func(*T) any
	// Set writes the field value. Used by the manipulator's copy.
	Set func(*T, any)
	// Ptr returns a scan destination for the field.
	Ptr func(*T) any
}

// NavMeta describes a navigation edge without typed accessors. Targets may
// expose further navigations, so filter paths can traverse chains like
// project.category.name; joins follow the chain hop by hop.
type NavMeta struct {
	// Name is the filter path segment ("category" in "category.name").
	Name string
	// Alias is the SQL alias the joined target table gets. Unique across
	// the whole descriptor, nested hops included.
	Alias string
	// FKColumn is the foreign key column on the owning table.
	FKColumn string
	// Required navigations join with an inner join and never hold a nil key.
	Required bool

	// Target table metadata.
	Table        string
	KeyColumn    string
	DomainColumn string
	// Fields are the target's scalar fields reachable through this
	// navigation in filter paths.
	Fields []FieldMeta
	// Navs are further hops reachable from the target.
	Navs []NavMeta
}

// Field looks up a target field by wire name.
func (n *NavMeta) Field(name string) (FieldMeta, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldMeta{}, false
}

// Nav looks up a nested hop by path segment.
func (n *NavMeta) Nav(name string) (*NavMeta, bool) {
	for i := range n.Navs {
		if n.Navs[i].Name == name {
			return &n.Navs[i], true
		}
	}
	return nil, false
}

// Navigation binds a top-level NavMeta to typed key accessors on the owning
// record.
type Navigation[T any] struct {
	NavMeta

	// ResolveByRef navigations are applied by key on copy: the referenced
	// record is looked up in the active domain rather than deep-copied.
	ResolveByRef bool

	// FK reads the foreign key; nil means unset.
	FK func(*T) *uuid.UUID
	// SetFK writes the foreign key. A nil value clears optional keys and is
	// ignored for required ones.
	SetFK func(*T, *uuid.UUID)
}

// Descriptor is the complete mapping of one entity type.
type Descriptor[T any] struct {
	// Name is the plural resource name ("projects"), unique in the catalog.
	Name string
	// Entity is the singular label used in errors and audit entries.
	Entity string
	Table  string
	// Alias prefixes the entity's own columns in generated SQL.
	Alias string

	Fields []Field[T]
	Navs   []Navigation[T]

	// Domain scoping: DomainColumn for a direct reference, or DomainVia
	// naming a required navigation whose target carries the domain column.
	DomainColumn string
	DomainVia    string
	// Domain and SetDomain access the direct reference; nil when scoped via
	// a navigation.
	Domain    func(*T) uuid.UUID
	SetDomain func(*T, uuid.UUID)

	// New returns a fresh record for scans and copies.
	New func() *T
	// NotFound is the sentinel returned for lookup misses on this entity.
	NotFound error
}

// Validate checks descriptor consistency. Called for every catalog entry at
// startup; a broken descriptor is a configuration error, not a request error.
func (d *Descriptor[T]) Validate() error {
	if d.Name == "" || d.Table == "" || d.Alias == "" {
		return fmt.Errorf("schema %s: name, table and alias are required", d.Name)
	}

	if len(d.Keys()) == 0 {
		return fmt.Errorf("schema %s: at least one primary key field is required", d.Name)
	}

	if d.New == nil {
		return fmt.Errorf("schema %s: New constructor is required", d.Name)
	}

	switch {
	case d.DomainColumn != "":
		if d.Domain == nil || d.SetDomain == nil {
			return fmt.Errorf("schema %s: direct domain scoping needs Domain and SetDomain accessors", d.Name)
		}
	case d.DomainVia != "":
		nav, ok := d.Nav(d.DomainVia)
		if !ok {
			return fmt.Errorf("schema %s: domain navigation %q not declared", d.Name, d.DomainVia)
		}
		if !nav.Required {
			return fmt.Errorf("schema %s: domain navigation %q must be required", d.Name, d.DomainVia)
		}
		if nav.DomainColumn == "" {
			return fmt.Errorf("schema %s: domain navigation %q target has no domain column", d.Name, d.DomainVia)
		}
	default:
		return fmt.Errorf("schema %s: no domain scoping declared", d.Name)
	}

	seen := map[string]bool{}
	for _, f := range d.Fields {
		if f.Name == "" || f.Column == "" {
			return fmt.Errorf("schema %s: field with empty name or column", d.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %q", d.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Kind == KindEnum && len(f.Enum) == 0 {
			return fmt.Errorf("schema %s: enum field %q has no values", d.Name, f.Name)
		}
		if f.Get == nil || f.Ptr == nil {
			return fmt.Errorf("schema %s: field %q missing accessors", d.Name, f.Name)
		}
	}

	aliases := map[string]bool{d.Alias: true}
	for i := range d.Navs {
		n := &d.Navs[i]
		if seen[n.Name] {
			return fmt.Errorf("schema %s: navigation %q collides with a field", d.Name, n.Name)
		}
		if n.FK == nil {
			return fmt.Errorf("schema %s: navigation %q missing FK accessor", d.Name, n.Name)
		}
		if err := d.validateNav(&n.NavMeta, aliases); err != nil {
			return err
		}
	}

	return nil
}

func (d *Descriptor[T]) validateNav(n *NavMeta, aliases map[string]bool) error {
	if aliases[n.Alias] {
		return fmt.Errorf("schema %s: duplicate table alias %q", d.Name, n.Alias)
	}
	aliases[n.Alias] = true

	if n.FKColumn == "" || n.Table == "" || n.KeyColumn == "" {
		return fmt.Errorf("schema %s: navigation %q missing join metadata", d.Name, n.Name)
	}

	for i := range n.Navs {
		if err := d.validateNav(&n.Navs[i], aliases); err != nil {
			return err
		}
	}

	return nil
}

// EntityMeta is the untyped slice of a descriptor that query compilation
// needs: names, columns, kinds and navigation chains, no accessors.
type EntityMeta struct {
	Name         string
	Entity       string
	Table        string
	Alias        string
	DomainColumn string
	DomainVia    string
	Fields       []FieldMeta
	Navs         []NavMeta
}

// Meta returns the descriptor's untyped metadata view.
func (d *Descriptor[T]) Meta() *EntityMeta {
	m := &EntityMeta{
		Name:         d.Name,
		Entity:       d.Entity,
		Table:        d.Table,
		Alias:        d.Alias,
		DomainColumn: d.DomainColumn,
		DomainVia:    d.DomainVia,
	}
	for _, f := range d.Fields {
		m.Fields = append(m.Fields, f.FieldMeta)
	}
	for i := range d.Navs {
		m.Navs = append(m.Navs, d.Navs[i].NavMeta)
	}
	return m
}

// Field looks up a scalar field by wire name.
func (m *EntityMeta) Field(name string) (FieldMeta, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldMeta{}, false
}

// Nav looks up a top-level navigation by path segment.
func (m *EntityMeta) Nav(name string) (*NavMeta, bool) {
	for i := range m.Navs {
		if m.Navs[i].Name == name {
			return &m.Navs[i], true
		}
	}
	return nil, false
}

// Keys returns the primary key fields in declared order.
func (m *EntityMeta) Keys() []FieldMeta {
	var keys []FieldMeta
	for _, f := range m.Fields {
		if f.PrimaryKey {
			keys = append(keys, f)
		}
	}
	return keys
}

// Field looks up a scalar field by wire name.
func (d *Descriptor[T]) Field(name string) (*Field[T], bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// Nav looks up a navigation by path segment.
func (d *Descriptor[T]) Nav(name string) (*Navigation[T], bool) {
	for i := range d.Navs {
		if d.Navs[i].Name == name {
			return &d.Navs[i], true
		}
	}
	return nil, false
}

// Keys returns the primary key fields in declared order.
func (d *Descriptor[T]) Keys() []*Field[T] {
	var keys []*Field[T]
	for i := range d.Fields {
		if d.Fields[i].PrimaryKey {
			keys = append(keys, &d.Fields[i])
		}
	}
	return keys
}

// Columns returns all column references in declared field order, prefixed
// with the entity alias. The order matches ScanDests.
func (d *Descriptor[T]) Columns() []string {
	cols := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		cols = append(cols, d.Alias+"."+f.Column)
	}
	return cols
}

// ScanDests returns scan destinations for every field, in Columns order.
func (d *Descriptor[T]) ScanDests(rec *T) []any {
	dests := make([]any, 0, len(d.Fields))
	for i := range d.Fields {
		dests = append(dests, d.Fields[i].Ptr(rec))
	}
	return dests
}

// InsertFields returns the fields written on insert: everything except
// database-maintained row timestamps.
func (d *Descriptor[T]) InsertFields() []*Field[T] {
	var out []*Field[T]
	for i := range d.Fields {
		if d.Fields[i].RowTimestamp {
			continue
		}
		out = append(out, &d.Fields[i])
	}
	return out
}

// UpdateFields returns the fields written on update: everything except
// primary keys, the domain column and row timestamps. Protected fields stay
// in the list; the manipulator never changes them, so the stored value is
// rewritten unchanged.
func (d *Descriptor[T]) UpdateFields() []*Field[T] {
	var out []*Field[T]
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.PrimaryKey || f.RowTimestamp || f.Column == d.DomainColumn {
			continue
		}
		out = append(out, f)
	}
	return out
}
