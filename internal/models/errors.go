package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingName      = errors.New("name is required")
	ErrMissingCode      = errors.New("code is required")
	ErrMissingFirstName = errors.New("first_name is required")
	ErrMissingLastName  = errors.New("last_name is required")
	ErrMissingEmail     = errors.New("email is required")
	ErrMissingTitle     = errors.New("title is required")
	ErrMissingProject   = errors.New("project_id is required")
	ErrInvalidStatus    = errors.New("status must be one of draft, active, archived")
)

// Sentinel errors for record lookups.
var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDomainNotFound   = errors.New("domain not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrContactNotFound  = errors.New("contact not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTaskNotFound     = errors.New("task not found")
)

// ErrNoActiveDomain indicates an operation required a domain scope but none
// could be resolved for the request. Distinct from a lookup miss: it signals
// a caller or configuration bug, not a data outcome.
var ErrNoActiveDomain = errors.New("no active domain")

// ErrDomainViolation indicates a record resolved by key belongs to a domain
// other than the active one. Deliberately distinct from ErrRecordNotFound:
// reaching this state means upstream authorization failed or a caller is
// probing across tenants, and it must stay observable.
var ErrDomainViolation = errors.New("domain ownership violation")

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrBadReference indicates a record points at a related record that does
// not exist in the active domain.
var ErrBadReference = errors.New("referenced record not found")

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}
