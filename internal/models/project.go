// Package models defines data types for the record service.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project statuses. Filters compare by parsed status value, case-insensitive
// on input, never by display string.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

// ParseProjectStatus normalizes a raw status string to its canonical value.
func ParseProjectStatus(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StatusDraft:
		return StatusDraft, true
	case StatusActive:
		return StatusActive, true
	case StatusArchived:
		return StatusArchived, true
	}
	return "", false
}

// Project is a domain-scoped record with optional navigation references to a
// category and a lead contact.
type Project struct {
	ID         uuid.UUID  `json:"id"`
	DomainID   uuid.UUID  `json:"-"`
	Name       string     `json:"name"`
	Code       string     `json:"code"`
	Status     string     `json:"status"`
	Budget     *float64   `json:"budget,omitempty"`
	Headcount  *int64     `json:"headcount,omitempty"`
	StartsOn   *time.Time `json:"starts_on,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	LeadID     *uuid.UUID `json:"lead_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ProjectRequest is the payload for creating or replacing a project. On
// replace, the code is immutable and the stored value wins.
type ProjectRequest struct {
	ID         uuid.UUID  `json:"id,omitempty"`
	Name       string     `json:"name"`
	Code       string     `json:"code"`
	Status     string     `json:"status"`
	Budget     *float64   `json:"budget,omitempty"`
	Headcount  *int64     `json:"headcount,omitempty"`
	StartsOn   *time.Time `json:"starts_on,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	LeadID     *uuid.UUID `json:"lead_id,omitempty"`
}

// Validate checks required fields and limits on ProjectRequest. If ID is
// empty, a UUID is auto-generated.
func (r *ProjectRequest) Validate() error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	if r.Name == "" {
		return ErrMissingName
	}

	if len(r.Name) > 255 {
		return ErrFieldTooLong("name", 255)
	}

	if r.Code == "" {
		return ErrMissingCode
	}

	if len(r.Code) > 64 {
		return ErrFieldTooLong("code", 64)
	}

	if r.Status == "" {
		r.Status = StatusDraft
	}

	status, ok := ParseProjectStatus(r.Status)
	if !ok {
		return ErrInvalidStatus
	}
	r.Status = status

	if len(r.Notes) > 10000 {
		return ErrFieldTooLong("notes", 10000)
	}

	return nil
}

// Record builds the Project this request describes. The domain is left unset;
// the contextual store force-tags it on insert.
func (r *ProjectRequest) Record() *Project {
	return &Project{
		ID:         r.ID,
		Name:       r.Name,
		Code:       r.Code,
		Status:     r.Status,
		Budget:     r.Budget,
		Headcount:  r.Headcount,
		StartsOn:   r.StartsOn,
		Notes:      r.Notes,
		CategoryID: r.CategoryID,
		LeadID:     r.LeadID,
	}
}
