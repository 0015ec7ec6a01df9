package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a record owned by a project. It carries no domain column of its
// own: its domain is the parent project's, one navigation level away.
type Task struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"project_id"`
	Title     string     `json:"title"`
	Done      bool       `json:"done"`
	DueOn     *time.Time `json:"due_on,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskRequest is the payload for creating or replacing a task.
type TaskRequest struct {
	ID        uuid.UUID  `json:"id,omitempty"`
	ProjectID uuid.UUID  `json:"project_id"`
	Title     string     `json:"title"`
	Done      bool       `json:"done"`
	DueOn     *time.Time `json:"due_on,omitempty"`
}

// Validate checks required fields and limits on TaskRequest. If ID is empty,
// a UUID is auto-generated.
func (r *TaskRequest) Validate() error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	if r.ProjectID == uuid.Nil {
		return ErrMissingProject
	}

	if r.Title == "" {
		return ErrMissingTitle
	}

	if len(r.Title) > 500 {
		return ErrFieldTooLong("title", 500)
	}

	return nil
}

// Record builds the Task this request describes.
func (r *TaskRequest) Record() *Task {
	return &Task{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Title:     r.Title,
		Done:      r.Done,
		DueOn:     r.DueOn,
	}
}
