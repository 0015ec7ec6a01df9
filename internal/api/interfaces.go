package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/service"
)

// RecordRepository defines the record operations used by RecordHandler.
type RecordRepository[T any] interface {
	Create(ctx context.Context, rec *T) (*T, error)
	BulkCreate(ctx context.Context, recs []*T) ([]*T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Replace(ctx context.Context, id uuid.UUID, rec *T) (*T, bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Query(ctx context.Context, req *models.QueryRequest) (*service.QueryResult[T], error)
	Neighbors(ctx context.Context, req *models.NeighborRequest) (*models.Neighbors, error)
	Export(ctx context.Context, req *models.QueryRequest, format service.ExportFormat) (*service.ExportResult, error)
}

// DomainRepository defines the domain management operations used by DomainHandler.
type DomainRepository interface {
	CreateDomain(ctx context.Context, req models.CreateDomainRequest) (*models.DomainWithKey, error)
	GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error)
	ListDomains(ctx context.Context) ([]models.Domain, error)
	UpdateDomain(ctx context.Context, id uuid.UUID, req models.UpdateDomainRequest) (*models.Domain, error)
	RotateDomainKey(ctx context.Context, id uuid.UUID) (*models.DomainWithKey, error)
	DeleteDomain(ctx context.Context, id uuid.UUID) error
}

// AuditRepository defines audit log operations used by AuditHandler.
type AuditRepository interface {
	QueryAudit(ctx context.Context, domainID uuid.UUID, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
	PurgeOldEntries(ctx context.Context, retentionDays int) (int, error)
}
