package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/corralhq/corral/internal/models"
)

func TestDomainService_CreateAudits(t *testing.T) {
	domainID := uuid.New()

	store := &mockDomainStore{
		createDomain: func(_ context.Context, req models.CreateDomainRequest) (*models.DomainWithKey, error) {
			return &models.DomainWithKey{
				Domain: models.Domain{ID: domainID, Name: req.Name, Active: true},
				APIKey: "crl_test",
			}, nil
		},
	}
	auditor := &mockAuditor{}
	svc := NewDomainService(store, auditor, testLogger())

	d, err := svc.CreateDomain(context.Background(), models.CreateDomainRequest{Name: "acme"})
	if err != nil {
		t.Fatalf("CreateDomain: %v", err)
	}
	if d.APIKey != "crl_test" {
		t.Errorf("api key = %q", d.APIKey)
	}

	calls := auditor.getCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 audit call, got %d", len(calls))
	}
	if calls[0].Action != "domain.create" || calls[0].Actor != "admin" {
		t.Errorf("audit = %+v, want domain.create by admin", calls[0])
	}
	if calls[0].DomainID != domainID {
		t.Errorf("audit domain = %s, want %s", calls[0].DomainID, domainID)
	}
}

func TestDomainService_RotateKeyAudits(t *testing.T) {
	domainID := uuid.New()

	store := &mockDomainStore{
		rotateKey: func(_ context.Context, id uuid.UUID) (*models.DomainWithKey, error) {
			return &models.DomainWithKey{
				Domain: models.Domain{ID: id, Name: "acme", Active: true},
				APIKey: "crl_rotated",
			}, nil
		},
	}
	auditor := &mockAuditor{}
	svc := NewDomainService(store, auditor, testLogger())

	d, err := svc.RotateDomainKey(context.Background(), domainID)
	if err != nil {
		t.Fatalf("RotateDomainKey: %v", err)
	}
	if d.APIKey != "crl_rotated" {
		t.Errorf("api key = %q", d.APIKey)
	}

	calls := auditor.getCalls()
	if len(calls) != 1 || calls[0].Action != "domain.rotate_key" {
		t.Errorf("expected domain.rotate_key audit, got %v", calls)
	}
}

func TestDomainService_ErrorSkipsAudit(t *testing.T) {
	store := &mockDomainStore{
		updateDomain: func(_ context.Context, _ uuid.UUID, _ models.UpdateDomainRequest) (*models.Domain, error) {
			return nil, models.ErrDomainNotFound
		},
	}
	auditor := &mockAuditor{}
	svc := NewDomainService(store, auditor, testLogger())

	_, err := svc.UpdateDomain(context.Background(), uuid.New(), models.UpdateDomainRequest{})
	if !errors.Is(err, models.ErrDomainNotFound) {
		t.Fatalf("UpdateDomain error = %v, want ErrDomainNotFound", err)
	}
	if len(auditor.getCalls()) != 0 {
		t.Error("expected no audit on failure")
	}
}
