// Package form implements the create/edit task dialog: draft defaults,
// validation and submission to the task store.
package form

import (
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/models"
)

// ErrClosed is returned when submitting a modal that is not open.
var ErrClosed = errors.New("form is not open")

// Draft holds the values of the form fields.
type Draft struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
}

// NewDraft pre-fills the form from an existing task, or with defaults when
// initial is nil.
func NewDraft(initial *models.Task) Draft {
	d := Draft{Status: models.StatusTodo, Priority: models.PriorityMedium}
	if initial == nil {
		return d
	}
	d.Title = initial.Title
	d.Description = initial.Description
	if initial.Status != "" {
		d.Status = initial.Status
	}
	if initial.Priority != "" {
		d.Priority = initial.Priority
	}
	return d
}

// Normalize trims text fields and fills in the status and priority
// defaults for empty selections.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Status == "" {
		d.Status = models.StatusTodo
	}
	if d.Priority == "" {
		d.Priority = models.PriorityMedium
	}
	return d
}

// Validate checks a normalized draft.
func (d Draft) Validate() error {
	if d.Title == "" {
		return models.ErrTitleRequired
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidStatus, d.Status)
	}
	if !d.Priority.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidPriority, d.Priority)
	}
	return nil
}

// TaskDraft converts a normalized draft into store input for a new task.
// New tasks start with no tags.
func (d Draft) TaskDraft() models.TaskDraft {
	return models.TaskDraft{
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		Tags:        []string{},
	}
}

// Patch converts a normalized draft into an update of every form field.
// An empty description clears the stored one; tags are left alone.
func (d Draft) Patch() models.TaskPatch {
	title, desc, status, priority := d.Title, d.Description, d.Status, d.Priority
	return models.TaskPatch{
		Title:       &title,
		Description: &desc,
		Status:      &status,
		Priority:    &priority,
	}
}
