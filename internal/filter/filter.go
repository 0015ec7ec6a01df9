// Package filter compiles client-supplied query requests into SQL fragments
// over an entity's schema metadata: WHERE predicates with positional args,
// join chains for navigation paths, ORDER BY keys and seek predicates for
// neighbor navigation. Everything is driven by descriptor metadata; bad
// paths, actions or values surface as per-entry client errors, never as
// panics.
package filter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/schema"
)

// Error is a client-input error for one filter or sort entry. Handlers map
// it to a 400 with the offending path and action.
type Error struct {
	Path   string
	Action string
	Reason string
}

func (e *Error) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("sort %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("filter %q action %q: %s", e.Path, e.Action, e.Reason)
}

func errf(path string, action models.FilterAction, format string, args ...any) *Error {
	return &Error{Path: path, Action: string(action), Reason: fmt.Sprintf(format, args...)}
}

// Options steer compilation.
type Options struct {
	// CaseInsensitive switches the substring actions to ILIKE.
	CaseInsensitive bool
}

// SortKey is one resolved ordering key.
type SortKey struct {
	Expr string
	Desc bool
}

// Compiled is a ready-to-run query shape. Args are positional starting at
// $1; the domain predicate is always part of Where.
type Compiled struct {
	Meta   *schema.EntityMeta
	Joins  []string
	Where  string
	Args   []any
	Keys   []SortKey
	Limit  int
	Offset int
}

// Compile translates a query request for an entity into SQL fragments,
// scoped to the given domain. The request must already be structurally
// validated.
func Compile(m *schema.EntityMeta, domainID uuid.UUID, req *models.QueryRequest, opts Options) (*Compiled, error) {
	c := &compiler{meta: m, opts: opts}

	var clauses []string

	clause, err := c.domainClause(domainID)
	if err != nil {
		return nil, err
	}
	clauses = append(clauses, clause)

	for i := range req.Filters {
		clause, err := c.compileFilter(&req.Filters[i])
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}

	if s := strings.TrimSpace(req.Search); s != "" {
		if clause := c.searchClause(s); clause != "" {
			clauses = append(clauses, clause)
		}
	}

	keys, err := c.compileSorts(req.Sorts)
	if err != nil {
		return nil, err
	}

	return &Compiled{
		Meta:   m,
		Joins:  c.joins,
		Where:  strings.Join(clauses, " AND "),
		Args:   c.args,
		Keys:   keys,
		Limit:  req.Limit(),
		Offset: req.Offset(),
	}, nil
}

// JoinSQL renders the join chain with a leading space, or "" when no
// navigation is involved.
func (q *Compiled) JoinSQL() string {
	if len(q.Joins) == 0 {
		return ""
	}
	return " " + strings.Join(q.Joins, " ")
}

// OrderBy renders the ORDER BY list for the compiled sort keys.
func (q *Compiled) OrderBy() string {
	return orderBy(q.Keys, false)
}

// OrderByReversed renders the ordering with every direction flipped, used
// for the previous-neighbor query.
func (q *Compiled) OrderByReversed() string {
	return orderBy(q.Keys, true)
}

func orderBy(keys []SortKey, reversed bool) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		dir := "ASC"
		if k.Desc != reversed {
			dir = "DESC"
		}
		parts = append(parts, k.Expr+" "+dir)
	}
	return strings.Join(parts, ", ")
}

// compiler accumulates joins and args while clauses are built.
type compiler struct {
	meta  *schema.EntityMeta
	opts  Options
	joins []string
	seen  map[string]bool
	args  []any
}

// arg appends a query argument and returns its placeholder.
func (c *compiler) arg(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *compiler) likeOp() string {
	if c.opts.CaseInsensitive {
		return "ILIKE"
	}
	return "LIKE"
}

// domainClause scopes every query to the active domain: directly on the
// entity's own column, or through the required navigation that carries it.
func (c *compiler) domainClause(domainID uuid.UUID) (string, error) {
	if c.meta.DomainColumn != "" {
		return fmt.Sprintf("%s.%s = %s", c.meta.Alias, c.meta.DomainColumn, c.arg(domainID)), nil
	}

	nav, ok := c.meta.Nav(c.meta.DomainVia)
	if !ok {
		return "", fmt.Errorf("schema %s: domain navigation %q not declared", c.meta.Name, c.meta.DomainVia)
	}
	c.ensureJoin(c.meta.Alias, nav)
	return fmt.Sprintf("%s.%s = %s", nav.Alias, nav.DomainColumn, c.arg(domainID)), nil
}

// ensureJoin adds the join for one navigation hop once.
func (c *compiler) ensureJoin(parentAlias string, nav *schema.NavMeta) {
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	if c.seen[nav.Alias] {
		return
	}
	c.seen[nav.Alias] = true

	kind := "LEFT JOIN"
	if nav.Required {
		kind = "JOIN"
	}
	c.joins = append(c.joins, fmt.Sprintf("%s %s %s ON %s.%s = %s.%s",
		kind, nav.Table, nav.Alias, nav.Alias, nav.KeyColumn, parentAlias, nav.FKColumn))
}

// searchClause matches the free-text term against every filterable string
// field on the entity's own table, OR-combined. Entities with no such field
// ignore the term.
func (c *compiler) searchClause(term string) string {
	pattern := "%" + EscapeLike(term) + "%"

	var parts []string
	var placeholder string
	for _, f := range c.meta.Fields {
		if !f.Filterable || f.Kind != schema.KindString {
			continue
		}
		if placeholder == "" {
			placeholder = c.arg(pattern)
		}
		parts = append(parts, fmt.Sprintf("%s.%s ILIKE %s", c.meta.Alias, f.Column, placeholder))
	}

	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
