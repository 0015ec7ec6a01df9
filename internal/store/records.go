package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/corralhq/corral/internal/filter"
	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/schema"
)

// Records is the data access store for one described entity. All reads and
// writes are scoped to a domain; a record that exists but belongs to another
// domain surfaces as models.ErrDomainViolation, never as not-found.
type Records[T any] struct {
	Base
	desc *schema.Descriptor[T]
	cols string
}

// NewRecords creates a record store for the given descriptor.
func NewRecords[T any](base Base, desc *schema.Descriptor[T]) *Records[T] {
	return &Records[T]{
		Base: base,
		desc: desc,
		cols: strings.Join(desc.Columns(), ", "),
	}
}

// Descriptor exposes the store's entity descriptor.
func (s *Records[T]) Descriptor() *schema.Descriptor[T] { return s.desc }

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pkExpr returns the alias-qualified primary key column.
func (s *Records[T]) pkExpr() string {
	return s.desc.Alias + "." + s.desc.Keys()[0].Column
}

// domainSelect returns the expression that yields a row's owning domain,
// plus the join needed when the domain lives on a navigated parent.
func (s *Records[T]) domainSelect() (expr, join string) {
	d := s.desc
	if d.DomainColumn != "" {
		return d.Alias + "." + d.DomainColumn, ""
	}

	nav, _ := d.Meta().Nav(d.DomainVia)
	join = fmt.Sprintf(" JOIN %s %s ON %s.%s = %s.%s",
		nav.Table, nav.Alias, nav.Alias, nav.KeyColumn, d.Alias, nav.FKColumn)
	return nav.Alias + "." + nav.DomainColumn, join
}

// verifyOwned checks that the record exists and belongs to the domain.
// A row owned by another domain is a loud violation.
func (s *Records[T]) verifyOwned(ctx context.Context, q rowQuerier, id any, domainID uuid.UUID) error {
	expr, join := s.domainSelect()
	sql := fmt.Sprintf("SELECT %s FROM %s %s%s WHERE %s = $1",
		expr, s.desc.Table, s.desc.Alias, join, s.pkExpr())

	var owner uuid.UUID
	if err := q.QueryRow(ctx, sql, id).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.desc.NotFound
		}
		return fmt.Errorf("checking %s ownership: %w", s.desc.Entity, err)
	}

	if owner != domainID {
		s.logViolation(id, domainID, owner)
		return models.ErrDomainViolation
	}

	return nil
}

func (s *Records[T]) logViolation(id any, domainID, owner uuid.UUID) {
	s.Log.WithFields(logrus.Fields{
		"resource":     s.desc.Name,
		"id":           fmt.Sprint(id),
		"domain_id":    domainID,
		"owner_domain": owner,
	}).Error("cross-domain access refused")
}

// checkParentDomain verifies, for entities whose domain lives on a parent,
// that the referenced parent exists and belongs to the domain.
func (s *Records[T]) checkParentDomain(ctx context.Context, q rowQuerier, domainID uuid.UUID, rec *T) error {
	d := s.desc
	nav, ok := d.Nav(d.DomainVia)
	if !ok {
		return fmt.Errorf("schema %s: domain navigation %q not declared", d.Name, d.DomainVia)
	}

	fk := nav.FK(rec)
	if fk == nil {
		return fmt.Errorf("%s: missing %s reference", d.Entity, nav.Name)
	}

	var owner uuid.UUID
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", nav.DomainColumn, nav.Table, nav.KeyColumn)
	if err := q.QueryRow(ctx, sql, *fk).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", nav.Name, fk, models.ErrRecordNotFound)
		}
		return fmt.Errorf("checking %s reference: %w", nav.Name, err)
	}

	if owner != domainID {
		s.logViolation(*fk, domainID, owner)
		return models.ErrDomainViolation
	}

	return nil
}

// insertSQL builds the INSERT statement shared by Insert and InsertMany.
func (s *Records[T]) insertSQL() (string, []*schema.Field[T]) {
	d := s.desc
	fields := d.InsertFields()

	cols := make([]string, len(fields))
	ph := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
		ph[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO %s AS %s (%s) VALUES (%s) RETURNING %s",
		d.Table, d.Alias, strings.Join(cols, ", "), strings.Join(ph, ", "), s.cols)
	return sql, fields
}

// Insert stores a new record. The record is force-tagged with the active
// domain; any domain the caller set is overwritten. Entities whose domain
// lives on a parent verify the parent's ownership first.
func (s *Records[T]) Insert(ctx context.Context, domainID uuid.UUID, rec *T) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	d := s.desc

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", d.Entity, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if d.DomainColumn != "" {
		d.SetDomain(rec, domainID)
	} else if err := s.checkParentDomain(ctx, tx, domainID, rec); err != nil {
		return nil, err
	}

	sql, fields := s.insertSQL()
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f.Get(rec)
	}

	out := d.New()
	if err := tx.QueryRow(ctx, sql, args...).Scan(d.ScanDests(out)...); err != nil {
		if isDuplicateKey(err) {
			return nil, models.ErrDuplicateKey
		}
		return nil, fmt.Errorf("inserting %s: %w", d.Entity, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing %s insert: %w", d.Entity, err)
	}

	s.notify(d.Name, "insert", domainID)

	return out, nil
}

// InsertMany stores a batch of records in one transaction. All records are
// force-tagged with the domain; the whole batch fails on the first error.
func (s *Records[T]) InsertMany(ctx context.Context, domainID uuid.UUID, recs []*T) ([]*T, error) {
	if len(recs) == 0 {
		return []*T{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	d := s.desc

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating %s batch: %w", d.Entity, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	sql, fields := s.insertSQL()

	batch := &pgx.Batch{}
	for _, rec := range recs {
		if d.DomainColumn != "" {
			d.SetDomain(rec, domainID)
		} else if err := s.checkParentDomain(ctx, tx, domainID, rec); err != nil {
			return nil, err
		}

		args := make([]any, len(fields))
		for i, f := range fields {
			args[i] = f.Get(rec)
		}
		batch.Queue(sql, args...)
	}

	br := tx.SendBatch(ctx, batch)

	out := make([]*T, len(recs))
	for i := range recs {
		out[i] = d.New()
		if err := br.QueryRow().Scan(d.ScanDests(out[i])...); err != nil {
			br.Close() //nolint:errcheck // already failing.
			if isDuplicateKey(err) {
				return nil, fmt.Errorf("record %d: %w", i, models.ErrDuplicateKey)
			}
			return nil, fmt.Errorf("inserting %s %d: %w", d.Entity, i, err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("closing %s batch: %w", d.Entity, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing %s batch: %w", d.Entity, err)
	}

	s.notify(d.Name, "insert", domainID)

	return out, nil
}

// GetByID fetches a record by primary key. Missing records return the
// entity's not-found error; records owned by another domain return
// models.ErrDomainViolation.
func (s *Records[T]) GetByID(ctx context.Context, domainID uuid.UUID, id uuid.UUID) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	d := s.desc
	expr, join := s.domainSelect()

	sql := fmt.Sprintf("SELECT %s, %s FROM %s %s%s WHERE %s = $1",
		s.cols, expr, d.Table, d.Alias, join, s.pkExpr())

	rec := d.New()
	var owner uuid.UUID
	dests := append(d.ScanDests(rec), &owner)

	if err := s.Pool.QueryRow(ctx, sql, id).Scan(dests...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, d.NotFound
		}
		return nil, fmt.Errorf("fetching %s: %w", d.Entity, err)
	}

	if owner != domainID {
		s.logViolation(id, domainID, owner)
		return nil, models.ErrDomainViolation
	}

	return rec, nil
}

// Update rewrites a record's mutable columns and returns the stored row.
// Ownership is verified before writing.
func (s *Records[T]) Update(ctx context.Context, domainID uuid.UUID, rec *T) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	d := s.desc
	id := d.Keys()[0].Get(rec)

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", d.Entity, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if err := s.verifyOwned(ctx, tx, id, domainID); err != nil {
		return nil, err
	}

	// Entities scoped through a parent may have been handed a new parent
	// key; the new parent must belong to the active domain too.
	if d.DomainColumn == "" {
		if err := s.checkParentDomain(ctx, tx, domainID, rec); err != nil {
			return nil, err
		}
	}

	fields := d.UpdateFields()
	setClauses := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		args = append(args, f.Get(rec))
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", f.Column, len(args)))
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, id)
	sql := fmt.Sprintf("UPDATE %s AS %s SET %s WHERE %s = $%d RETURNING %s",
		d.Table, d.Alias, strings.Join(setClauses, ", "), s.pkExpr(), len(args), s.cols)

	out := d.New()
	if err := tx.QueryRow(ctx, sql, args...).Scan(d.ScanDests(out)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, d.NotFound
		}
		if isDuplicateKey(err) {
			return nil, models.ErrDuplicateKey
		}
		return nil, fmt.Errorf("updating %s row: %w", d.Entity, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing %s update: %w", d.Entity, err)
	}

	s.notify(d.Name, "update", domainID)

	return out, nil
}

// Delete removes a record by primary key after verifying ownership.
func (s *Records[T]) Delete(ctx context.Context, domainID uuid.UUID, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	d := s.desc

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", d.Entity, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if err := s.verifyOwned(ctx, tx, id, domainID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s AS %s WHERE %s = $1", d.Table, d.Alias, s.pkExpr()), id)
	if err != nil {
		return fmt.Errorf("executing %s delete: %w", d.Entity, err)
	}
	if tag.RowsAffected() == 0 {
		return d.NotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing %s delete: %w", d.Entity, err)
	}

	s.notify(d.Name, "delete", domainID)

	return nil
}

// Query runs a compiled query: total count first, then the requested page
// in the compiled ordering. An unpaginated query returns every match.
func (s *Records[T]) Query(ctx context.Context, q *filter.Compiled) ([]*T, int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	d := s.desc

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", d.Name, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var total int
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s %s%s WHERE %s", d.Table, d.Alias, q.JoinSQL(), q.Where)
	if err := tx.QueryRow(ctx, countSQL, q.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", d.Name, err)
	}

	sel := fmt.Sprintf("SELECT %s FROM %s %s%s WHERE %s ORDER BY %s",
		s.cols, d.Table, d.Alias, q.JoinSQL(), q.Where, q.OrderBy())

	args := append([]any{}, q.Args...)
	if q.Limit > 0 {
		sel += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := tx.Query(ctx, sel, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s page: %w", d.Name, err)
	}
	defer rows.Close()

	items := make([]*T, 0, 16)
	for rows.Next() {
		rec := d.New()
		if err := rows.Scan(d.ScanDests(rec)...); err != nil {
			return nil, 0, fmt.Errorf("scanning %s row: %w", d.Entity, err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating %s rows: %w", d.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("committing %s query: %w", d.Name, err)
	}

	return items, total, nil
}

// Neighbors finds the primary keys of the records immediately after and
// before the given record under the compiled ordering and scope. Either
// neighbor may be absent (uuid.Nil); the record itself must be inside the
// scoped set or the entity's not-found error is returned.
func (s *Records[T]) Neighbors(ctx context.Context, q *filter.Compiled, id uuid.UUID) (next, prev uuid.UUID, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	d := s.desc
	pk := s.pkExpr()

	keyExprs := make([]string, len(q.Keys))
	for i, k := range q.Keys {
		keyExprs[i] = k.Expr
	}

	args := append([]any{}, q.Args...)
	args = append(args, id)
	curSQL := fmt.Sprintf("SELECT %s FROM %s %s%s WHERE %s AND %s = $%d",
		strings.Join(keyExprs, ", "), d.Table, d.Alias, q.JoinSQL(), q.Where, pk, len(args))

	keyVals := make([]any, len(q.Keys))
	dests := make([]any, len(q.Keys))
	for i := range keyVals {
		dests[i] = &keyVals[i]
	}

	if err := s.Pool.QueryRow(ctx, curSQL, args...).Scan(dests...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, uuid.Nil, d.NotFound
		}
		return uuid.Nil, uuid.Nil, fmt.Errorf("fetching %s sort keys: %w", d.Entity, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gerr error
		next, gerr = s.seekOne(gctx, q, keyVals, id, true)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		prev, gerr = s.seekOne(gctx, q, keyVals, id, false)
		return gerr
	})
	if err := g.Wait(); err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	return next, prev, nil
}

// seekOne runs one direction of the neighbor seek and returns the matched
// primary key, or uuid.Nil when no neighbor exists.
func (s *Records[T]) seekOne(ctx context.Context, q *filter.Compiled, keyVals []any, id uuid.UUID, forward bool) (uuid.UUID, error) {
	d := s.desc
	pk := s.pkExpr()

	where, args, err := q.Seek(keyVals, []string{pk}, []any{id}, forward)
	if err != nil {
		return uuid.Nil, fmt.Errorf("building %s seek: %w", d.Entity, err)
	}

	order := q.OrderBy()
	if !forward {
		order = q.OrderByReversed()
	}

	sql := fmt.Sprintf("SELECT %s FROM %s %s%s WHERE %s ORDER BY %s LIMIT 1",
		pk, d.Table, d.Alias, q.JoinSQL(), where, order)

	var neighbor uuid.UUID
	if err := s.Pool.QueryRow(ctx, sql, args...).Scan(&neighbor); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, fmt.Errorf("seeking %s neighbor: %w", d.Entity, err)
	}

	return neighbor, nil
}

// RefExists reports whether a navigation target exists within the domain.
// Used to validate resolve-by-reference payloads before writing.
func (s *Records[T]) RefExists(ctx context.Context, domainID uuid.UUID, nav *schema.NavMeta, id uuid.UUID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sql := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)",
		nav.Table, nav.KeyColumn, nav.DomainColumn)

	var ok bool
	if err := s.Pool.QueryRow(ctx, sql, id, domainID).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking %s reference: %w", nav.Name, err)
	}

	return ok, nil
}
