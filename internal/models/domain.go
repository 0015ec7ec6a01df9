package models

import (
	"time"

	"github.com/google/uuid"
)

// Domain is a tenant partition. Every record in the system belongs to exactly
// one domain, directly or through one level of navigation.
type Domain struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DomainWithKey is returned once at creation time; the API key is never
// retrievable again.
type DomainWithKey struct {
	Domain
	APIKey string `json:"api_key"`
}

// CreateDomainRequest is the payload for provisioning a new domain.
type CreateDomainRequest struct {
	Name string `json:"name"`
}

// Validate checks CreateDomainRequest fields.
func (r *CreateDomainRequest) Validate() error {
	if r.Name == "" {
		return ErrMissingName
	}

	if len(r.Name) > 255 {
		return ErrFieldTooLong("name", 255)
	}

	return nil
}

// UpdateDomainRequest is the payload for renaming or toggling a domain.
type UpdateDomainRequest struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Validate checks UpdateDomainRequest fields.
func (r *UpdateDomainRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ErrMissingName
	}

	if r.Name != nil && len(*r.Name) > 255 {
		return ErrFieldTooLong("name", 255)
	}

	return nil
}
