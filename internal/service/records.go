// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/domain"
	"github.com/corralhq/corral/internal/filter"
	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/schema"
)

// RecordStore is the data-access interface RecordService depends on.
// Defined at the consumer (per project convention) so the store package
// depends on no service types.
type RecordStore[T any] interface {
	Insert(ctx context.Context, domainID uuid.UUID, rec *T) (*T, error)
	InsertMany(ctx context.Context, domainID uuid.UUID, recs []*T) ([]*T, error)
	GetByID(ctx context.Context, domainID, id uuid.UUID) (*T, error)
	Update(ctx context.Context, domainID uuid.UUID, rec *T) (*T, error)
	Delete(ctx context.Context, domainID, id uuid.UUID) error
	Query(ctx context.Context, q *filter.Compiled) ([]*T, int, error)
	Neighbors(ctx context.Context, q *filter.Compiled, id uuid.UUID) (next, prev uuid.UUID, err error)
	RefExists(ctx context.Context, domainID uuid.UUID, nav *schema.NavMeta, id uuid.UUID) (bool, error)
}

// RecordService wraps a RecordStore with domain resolution, reference
// checks, replace semantics and async audit. One instance serves one entity
// type; the handlers instantiate it per catalog entry.
type RecordService[T any] struct {
	store RecordStore[T]
	desc  *schema.Descriptor[T]
	meta  *schema.EntityMeta
	audit AuditEnqueuer
	log   *logrus.Logger
	opts  filter.Options
}

// NewRecordService creates a RecordService for one descriptor.
func NewRecordService[T any](
	store RecordStore[T], desc *schema.Descriptor[T], audit AuditEnqueuer, log *logrus.Logger, opts filter.Options,
) *RecordService[T] {
	return &RecordService[T]{
		store: store,
		desc:  desc,
		meta:  desc.Meta(),
		audit: audit,
		log:   log,
		opts:  opts,
	}
}

// Descriptor exposes the entity mapping, mainly for handler wiring.
func (s *RecordService[T]) Descriptor() *schema.Descriptor[T] { return s.desc }

// recordID reads the record's primary key through the descriptor.
func (s *RecordService[T]) recordID(rec *T) uuid.UUID {
	keys := s.desc.Keys()
	if len(keys) == 0 {
		return uuid.Nil
	}
	id, _ := keys[0].Get(rec).(uuid.UUID)
	return id
}

// checkRefs verifies that every resolve-by-reference key on rec points at a
// record in the active domain. The navigation carrying the domain is
// enforced by the store inside the write transaction and skipped here. When
// prev is given, keys that did not move are trusted.
func (s *RecordService[T]) checkRefs(ctx context.Context, domainID uuid.UUID, rec, prev *T) error {
	for i := range s.desc.Navs {
		n := &s.desc.Navs[i]
		if !n.ResolveByRef || n.Name == s.desc.DomainVia {
			continue
		}

		id := n.FK(rec)
		if id == nil {
			continue
		}
		if prev != nil {
			if old := n.FK(prev); old != nil && *old == *id {
				continue
			}
		}

		ok, err := s.store.RefExists(ctx, domainID, &n.NavMeta, *id)
		if err != nil {
			return fmt.Errorf("checking %s reference: %w", n.Name, err)
		}
		if !ok {
			return fmt.Errorf("%s %s: %w", n.Name, models.CanonicalID(*id), models.ErrBadReference)
		}
	}

	return nil
}

// Create validates references and inserts the record into the active domain.
func (s *RecordService[T]) Create(ctx context.Context, rec *T) (*T, error) {
	domainID, err := domain.Active(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.checkRefs(ctx, domainID, rec, nil); err != nil {
		return nil, err
	}

	created, err := s.store.Insert(ctx, domainID, rec)
	if err != nil {
		return nil, err
	}

	auditAsync(s.audit, domainID, s.desc.Entity+".create", s.desc.Entity,
		models.CanonicalID(s.recordID(created)), nil)

	return created, nil
}

// BulkCreate inserts a batch of records; all of them or none.
func (s *RecordService[T]) BulkCreate(ctx context.Context, recs []*T) ([]*T, error) {
	domainID, err := domain.Active(ctx)
	if err != nil {
		return nil, err
	}

	for i, rec := range recs {
		if err := s.checkRefs(ctx, domainID, rec, nil); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	created, err := s.store.InsertMany(ctx, domainID, recs)
	if err != nil {
		return nil, err
	}

	auditAsync(s.audit, domainID, s.desc.Entity+".bulk_create", s.desc.Entity, "",
		map[string]any{"count": len(created)})

	return created, nil
}

// Get returns one record from the active domain by primary key.
func (s *RecordService[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	domainID, err := domain.Active(ctx)
	if err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, domainID, id)
}

// Replace loads the stored record and lays the payload's eligible fields
// over it: keys, the domain reference, protected fields and row timestamps
// keep their stored values. When the payload matches the stored state the
// write is skipped and the second return is false.
func (s *RecordService[T]) Replace(ctx context.Context, id uuid.UUID, rec *T) (*T, bool, error) {
	domainID, err := domain.Active(ctx)
	if err != nil {
		return nil, false, err
	}

	current, err := s.store.GetByID(ctx, domainID, id)
	if err != nil {
		return nil, false, err
	}

	man := schema.ManipulatorFor(s.desc)
	if man.Equal(rec, current) {
		return current, false, nil
	}

	if err := s.checkRefs(ctx, domainID, rec, current); err != nil {
		return nil, false, err
	}

	man.CopyInto(rec, current)

	updated, err := s.store.Update(ctx, domainID, current)
	if err != nil {
		return nil, false, err
	}

	auditAsync(s.audit, domainID, s.desc.Entity+".update", s.desc.Entity,
		models.CanonicalID(id), nil)

	return updated, true, nil
}

// Delete removes one record from the active domain.
func (s *RecordService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	domainID, err := domain.Active(ctx)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, domainID, id); err != nil {
		return err
	}

	auditAsync(s.audit, domainID, s.desc.Entity+".delete", s.desc.Entity,
		models.CanonicalID(id), nil)

	return nil
}

// QueryResult is one page of records plus the pre-pagination total.
type QueryResult[T any] struct {
	Items  []*T
	Total  int
	Offset int
}

// Query compiles the request against the entity schema and runs it in the
// active domain.
func (s *RecordService[T]) Query(ctx context.Context, req *models.QueryRequest) (*QueryResult[T], error) {
	domainID, err := domain.Active(ctx)
	if err != nil {
		return nil, err
	}

	q, err := filter.Compile(s.meta, domainID, req, s.opts)
	if err != nil {
		return nil, err
	}

	items, total, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	return &QueryResult[T]{Items: items, Total: total, Offset: q.Offset}, nil
}

// Neighbors returns cursors for the records adjacent to one record under
// the request's ordering. An absent neighbor is an empty cursor.
func (s *RecordService[T]) Neighbors(ctx context.Context, req *models.NeighborRequest) (*models.Neighbors, error) {
	domainID, err := domain.Active(ctx)
	if err != nil {
		return nil, err
	}

	id, err := models.ParseID(req.ID)
	if err != nil {
		return nil, err
	}

	q, err := filter.Compile(s.meta, domainID, &req.QueryRequest, s.opts)
	if err != nil {
		return nil, err
	}

	next, prev, err := s.store.Neighbors(ctx, q, id)
	if err != nil {
		return nil, err
	}

	n := &models.Neighbors{}
	if next != uuid.Nil {
		n.Next = models.CanonicalID(next)
	}
	if prev != uuid.Nil {
		n.Previous = models.CanonicalID(prev)
	}

	return n, nil
}
