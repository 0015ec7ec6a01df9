package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is a domain-scoped person record.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	DomainID  uuid.UUID `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Age       *int64    `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactRequest is the payload for creating or replacing a contact.
type ContactRequest struct {
	ID        uuid.UUID `json:"id,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Age       *int64    `json:"age,omitempty"`
}

// Validate checks required fields and limits on ContactRequest. If ID is
// empty, a UUID is auto-generated.
func (r *ContactRequest) Validate() error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	if r.FirstName == "" {
		return ErrMissingFirstName
	}

	if len(r.FirstName) > 100 {
		return ErrFieldTooLong("first_name", 100)
	}

	if r.LastName == "" {
		return ErrMissingLastName
	}

	if len(r.LastName) > 100 {
		return ErrFieldTooLong("last_name", 100)
	}

	if r.Email == "" {
		return ErrMissingEmail
	}

	if len(r.Email) > 255 {
		return ErrFieldTooLong("email", 255)
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	return nil
}

// Record builds the Contact this request describes.
func (r *ContactRequest) Record() *Contact {
	return &Contact{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Age:       r.Age,
	}
}
