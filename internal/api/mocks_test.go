package api_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/service"
)

// mockRecordRepo implements api.RecordRepository for testing.
type mockRecordRepo[T any] struct {
	createFn     func(ctx context.Context, rec *T) (*T, error)
	bulkCreateFn func(ctx context.Context, recs []*T) ([]*T, error)
	getFn        func(ctx context.Context, id uuid.UUID) (*T, error)
	replaceFn    func(ctx context.Context, id uuid.UUID, rec *T) (*T, bool, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	queryFn      func(ctx context.Context, req *models.QueryRequest) (*service.QueryResult[T], error)
	neighborsFn  func(ctx context.Context, req *models.NeighborRequest) (*models.Neighbors, error)
	exportFn     func(ctx context.Context, req *models.QueryRequest, format service.ExportFormat) (*service.ExportResult, error)
}

func (m *mockRecordRepo[T]) Create(ctx context.Context, rec *T) (*T, error) {
	return m.createFn(ctx, rec)
}

func (m *mockRecordRepo[T]) BulkCreate(ctx context.Context, recs []*T) ([]*T, error) {
	return m.bulkCreateFn(ctx, recs)
}

func (m *mockRecordRepo[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return m.getFn(ctx, id)
}

func (m *mockRecordRepo[T]) Replace(ctx context.Context, id uuid.UUID, rec *T) (*T, bool, error) {
	return m.replaceFn(ctx, id, rec)
}

func (m *mockRecordRepo[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockRecordRepo[T]) Query(ctx context.Context, req *models.QueryRequest) (*service.QueryResult[T], error) {
	return m.queryFn(ctx, req)
}

func (m *mockRecordRepo[T]) Neighbors(ctx context.Context, req *models.NeighborRequest) (*models.Neighbors, error) {
	return m.neighborsFn(ctx, req)
}

func (m *mockRecordRepo[T]) Export(ctx context.Context, req *models.QueryRequest, format service.ExportFormat) (*service.ExportResult, error) {
	return m.exportFn(ctx, req, format)
}

// mockDomainRepo implements api.DomainRepository for testing.
type mockDomainRepo struct {
	createFn func(ctx context.Context, req models.CreateDomainRequest) (*models.DomainWithKey, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*models.Domain, error)
	listFn   func(ctx context.Context) ([]models.Domain, error)
	updateFn func(ctx context.Context, id uuid.UUID, req models.UpdateDomainRequest) (*models.Domain, error)
	rotateFn func(ctx context.Context, id uuid.UUID) (*models.DomainWithKey, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDomainRepo) CreateDomain(ctx context.Context, req models.CreateDomainRequest) (*models.DomainWithKey, error) {
	return m.createFn(ctx, req)
}

func (m *mockDomainRepo) GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	return m.getFn(ctx, id)
}

func (m *mockDomainRepo) ListDomains(ctx context.Context) ([]models.Domain, error) {
	return m.listFn(ctx)
}

func (m *mockDomainRepo) UpdateDomain(ctx context.Context, id uuid.UUID, req models.UpdateDomainRequest) (*models.Domain, error) {
	return m.updateFn(ctx, id, req)
}

func (m *mockDomainRepo) RotateDomainKey(ctx context.Context, id uuid.UUID) (*models.DomainWithKey, error) {
	return m.rotateFn(ctx, id)
}

func (m *mockDomainRepo) DeleteDomain(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

// mockAuditRepo implements api.AuditRepository for testing.
type mockAuditRepo struct {
	queryFn func(ctx context.Context, domainID uuid.UUID, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
	purgeFn func(ctx context.Context, retentionDays int) (int, error)
}

func (m *mockAuditRepo) QueryAudit(ctx context.Context, domainID uuid.UUID, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	return m.queryFn(ctx, domainID, opts)
}

func (m *mockAuditRepo) PurgeOldEntries(ctx context.Context, retentionDays int) (int, error) {
	return m.purgeFn(ctx, retentionDays)
}
