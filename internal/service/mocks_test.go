package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/filter"
	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/schema"
)

// mockRecordStore records calls and returns configured responses.
type mockRecordStore[T any] struct {
	mu    sync.Mutex
	calls []string

	insert     func(ctx context.Context, domainID uuid.UUID, rec *T) (*T, error)
	insertMany func(ctx context.Context, domainID uuid.UUID, recs []*T) ([]*T, error)
	getByID    func(ctx context.Context, domainID, id uuid.UUID) (*T, error)
	update     func(ctx context.Context, domainID uuid.UUID, rec *T) (*T, error)
	deleteRec  func(ctx context.Context, domainID, id uuid.UUID) error
	query      func(ctx context.Context, q *filter.Compiled) ([]*T, int, error)
	neighbors  func(ctx context.Context, q *filter.Compiled, id uuid.UUID) (uuid.UUID, uuid.UUID, error)
	refExists  func(ctx context.Context, domainID uuid.UUID, nav *schema.NavMeta, id uuid.UUID) (bool, error)
}

func (m *mockRecordStore[T]) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockRecordStore[T]) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(m.calls))
	copy(cp, m.calls)
	return cp
}

func (m *mockRecordStore[T]) Insert(ctx context.Context, domainID uuid.UUID, rec *T) (*T, error) {
	m.record("Insert")
	return m.insert(ctx, domainID, rec)
}

func (m *mockRecordStore[T]) InsertMany(ctx context.Context, domainID uuid.UUID, recs []*T) ([]*T, error) {
	m.record("InsertMany")
	return m.insertMany(ctx, domainID, recs)
}

func (m *mockRecordStore[T]) GetByID(ctx context.Context, domainID, id uuid.UUID) (*T, error) {
	m.record("GetByID")
	return m.getByID(ctx, domainID, id)
}

func (m *mockRecordStore[T]) Update(ctx context.Context, domainID uuid.UUID, rec *T) (*T, error) {
	m.record("Update")
	return m.update(ctx, domainID, rec)
}

func (m *mockRecordStore[T]) Delete(ctx context.Context, domainID, id uuid.UUID) error {
	m.record("Delete")
	return m.deleteRec(ctx, domainID, id)
}

func (m *mockRecordStore[T]) Query(ctx context.Context, q *filter.Compiled) ([]*T, int, error) {
	m.record("Query")
	return m.query(ctx, q)
}

func (m *mockRecordStore[T]) Neighbors(ctx context.Context, q *filter.Compiled, id uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	m.record("Neighbors")
	return m.neighbors(ctx, q, id)
}

func (m *mockRecordStore[T]) RefExists(ctx context.Context, domainID uuid.UUID, nav *schema.NavMeta, id uuid.UUID) (bool, error) {
	m.record("RefExists")
	return m.refExists(ctx, domainID, nav, id)
}

// mockDomainStore records calls and returns configured responses.
type mockDomainStore struct {
	mu    sync.Mutex
	calls []string

	createDomain func(ctx context.Context, req models.CreateDomainRequest) (*models.DomainWithKey, error)
	getDomain    func(ctx context.Context, id uuid.UUID) (*models.Domain, error)
	getByAPIKey  func(ctx context.Context, apiKey string) (*models.Domain, error)
	listDomains  func(ctx context.Context) ([]models.Domain, error)
	updateDomain func(ctx context.Context, id uuid.UUID, req models.UpdateDomainRequest) (*models.Domain, error)
	rotateKey    func(ctx context.Context, id uuid.UUID) (*models.DomainWithKey, error)
	deleteDomain func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDomainStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockDomainStore) CreateDomain(ctx context.Context, req models.CreateDomainRequest) (*models.DomainWithKey, error) {
	m.record("CreateDomain")
	return m.createDomain(ctx, req)
}

func (m *mockDomainStore) GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	m.record("GetDomain")
	return m.getDomain(ctx, id)
}

func (m *mockDomainStore) GetDomainByAPIKey(ctx context.Context, apiKey string) (*models.Domain, error) {
	m.record("GetDomainByAPIKey")
	return m.getByAPIKey(ctx, apiKey)
}

func (m *mockDomainStore) ListDomains(ctx context.Context) ([]models.Domain, error) {
	m.record("ListDomains")
	return m.listDomains(ctx)
}

func (m *mockDomainStore) UpdateDomain(ctx context.Context, id uuid.UUID, req models.UpdateDomainRequest) (*models.Domain, error) {
	m.record("UpdateDomain")
	return m.updateDomain(ctx, id, req)
}

func (m *mockDomainStore) RotateDomainKey(ctx context.Context, id uuid.UUID) (*models.DomainWithKey, error) {
	m.record("RotateDomainKey")
	return m.rotateKey(ctx, id)
}

func (m *mockDomainStore) DeleteDomain(ctx context.Context, id uuid.UUID) error {
	m.record("DeleteDomain")
	return m.deleteDomain(ctx, id)
}

// mockAuditor records audit calls.
type mockAuditor struct {
	mu    sync.Mutex
	calls []AuditJob

	err error
}

func (m *mockAuditor) RecordAudit(
	ctx context.Context, domainID uuid.UUID, action, entityType, entityID, actor string, detail map[string]any,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, AuditJob{
		DomainID:   domainID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Detail:     detail,
	})
	return m.err
}

func (m *mockAuditor) getCalls() []AuditJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]AuditJob, len(m.calls))
	copy(cp, m.calls)
	return cp
}
