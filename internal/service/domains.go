package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/models"
)

// DomainStore is the data-access interface DomainService depends on.
type DomainStore interface {
	CreateDomain(ctx context.Context, req models.CreateDomainRequest) (*models.DomainWithKey, error)
	GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error)
	GetDomainByAPIKey(ctx context.Context, apiKey string) (*models.Domain, error)
	ListDomains(ctx context.Context) ([]models.Domain, error)
	UpdateDomain(ctx context.Context, id uuid.UUID, req models.UpdateDomainRequest) (*models.Domain, error)
	RotateDomainKey(ctx context.Context, id uuid.UUID) (*models.DomainWithKey, error)
	DeleteDomain(ctx context.Context, id uuid.UUID) error
}

// DomainService wraps DomainStore with audit entries for administrative
// changes. Domain management is low-volume, so audits here are synchronous.
type DomainService struct {
	store   DomainStore
	auditor Auditor
	log     *logrus.Logger
}

// NewDomainService creates a DomainService.
func NewDomainService(store DomainStore, auditor Auditor, log *logrus.Logger) *DomainService {
	return &DomainService{store: store, auditor: auditor, log: log}
}

func (s *DomainService) audit(ctx context.Context, domainID uuid.UUID, action string, detail map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.RecordAudit(
		ctx, domainID, action, "domain", models.CanonicalID(domainID), "admin", detail,
	); err != nil {
		s.log.WithError(err).Warn("audit record failed")
	}
}

// CreateDomain provisions a domain and returns it with its API key. The key
// is shown once; only its hash is stored.
func (s *DomainService) CreateDomain(ctx context.Context, req models.CreateDomainRequest) (*models.DomainWithKey, error) {
	d, err := s.store.CreateDomain(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"domain_id": d.ID,
		"name":      d.Name,
	}).Info("domain.create")
	s.audit(ctx, d.ID, "domain.create", map[string]any{"name": d.Name})

	return d, nil
}

// GetDomain returns one domain by ID (pass-through).
func (s *DomainService) GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	return s.store.GetDomain(ctx, id)
}

// ResolveAPIKey returns the ID of the active domain a key authenticates.
func (s *DomainService) ResolveAPIKey(ctx context.Context, apiKey string) (uuid.UUID, error) {
	d, err := s.store.GetDomainByAPIKey(ctx, apiKey)
	if err != nil {
		return uuid.Nil, err
	}

	return d.ID, nil
}

// ListDomains returns every domain (pass-through).
func (s *DomainService) ListDomains(ctx context.Context) ([]models.Domain, error) {
	return s.store.ListDomains(ctx)
}

// UpdateDomain changes a domain's name or active flag.
func (s *DomainService) UpdateDomain(ctx context.Context, id uuid.UUID, req models.UpdateDomainRequest) (*models.Domain, error) {
	d, err := s.store.UpdateDomain(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, id, "domain.update", nil)

	return d, nil
}

// RotateDomainKey replaces the domain's API key and returns the new one.
// Sessions holding the old key stop resolving immediately.
func (s *DomainService) RotateDomainKey(ctx context.Context, id uuid.UUID) (*models.DomainWithKey, error) {
	d, err := s.store.RotateDomainKey(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.WithField("domain_id", id).Info("domain.rotate_key")
	s.audit(ctx, id, "domain.rotate_key", nil)

	return d, nil
}

// DeleteDomain removes a domain and everything it owns.
func (s *DomainService) DeleteDomain(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteDomain(ctx, id); err != nil {
		return err
	}

	s.log.WithField("domain_id", id).Info("domain.delete")

	return nil
}
