package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a domain-scoped grouping record referenced by projects.
type Category struct {
	ID        uuid.UUID `json:"id"`
	DomainID  uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Rank      int64     `json:"rank"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryRequest is the payload for creating or replacing a category.
type CategoryRequest struct {
	ID   uuid.UUID `json:"id,omitempty"`
	Name string    `json:"name"`
	Rank int64     `json:"rank"`
}

// Validate checks required fields and limits on CategoryRequest. If ID is
// empty, a UUID is auto-generated.
func (r *CategoryRequest) Validate() error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	if r.Name == "" {
		return ErrMissingName
	}

	if len(r.Name) > 255 {
		return ErrFieldTooLong("name", 255)
	}

	return nil
}

// Record builds the Category this request describes.
func (r *CategoryRequest) Record() *Category {
	return &Category{
		ID:   r.ID,
		Name: r.Name,
		Rank: r.Rank,
	}
}
