package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/models"
)

// Auditor records audit entries synchronously. The AuditWorker drains its
// queue through this interface.
type Auditor interface {
	RecordAudit(
		ctx context.Context, domainID uuid.UUID, action, entityType, entityID, actor string, detail map[string]any,
	) error
}

// AuditQueryStore is the data-access interface AuditService depends on.
type AuditQueryStore interface {
	Auditor
	QueryAudit(ctx context.Context, domainID uuid.UUID, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
	PurgeOldEntries(ctx context.Context, retentionDays int) (int, error)
}

// AuditService wraps AuditQueryStore with logging for destructive operations.
type AuditService struct {
	store AuditQueryStore
	log   *logrus.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(store AuditQueryStore, log *logrus.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

// RecordAudit inserts an audit log entry (pass-through to store).
func (s *AuditService) RecordAudit(
	ctx context.Context, domainID uuid.UUID, action, entityType, entityID, actor string, detail map[string]any,
) error {
	return s.store.RecordAudit(ctx, domainID, action, entityType, entityID, actor, detail)
}

// QueryAudit returns audit entries for the domain matching the given filters
// (pass-through).
func (s *AuditService) QueryAudit(
	ctx context.Context, domainID uuid.UUID, opts models.AuditQueryOpts,
) ([]models.AuditEntry, bool, error) {
	return s.store.QueryAudit(ctx, domainID, opts)
}

// PurgeOldEntries deletes audit entries older than retentionDays across all
// domains and logs the result.
func (s *AuditService) PurgeOldEntries(ctx context.Context, retentionDays int) (int, error) {
	deleted, err := s.store.PurgeOldEntries(ctx, retentionDays)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"retention_days": retentionDays,
		"deleted":        deleted,
	}).Info("audit.purge")

	return deleted, nil
}
