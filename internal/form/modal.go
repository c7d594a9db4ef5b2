package form

import (
	"context"
	"fmt"

	"taskboard/internal/models"
)

// Mutator is the part of the task store a submitted form writes to.
type Mutator interface {
	Create(ctx context.Context, d models.TaskDraft) (models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) (bool, error)
}

// Modal tracks whether the task dialog is open and which task it edits.
// It is not safe for concurrent use; each client owns its own Modal.
type Modal struct {
	open      bool
	editingID string
	draft     Draft
}

// OpenNew shows an empty dialog for creating a task.
func (m *Modal) OpenNew() {
	m.open = true
	m.editingID = ""
	m.draft = NewDraft(nil)
}

// OpenEdit shows the dialog pre-filled with t.
func (m *Modal) OpenEdit(t models.Task) {
	m.open = true
	m.editingID = t.ID
	m.draft = NewDraft(&t)
}

// Cancel closes the dialog and discards the draft without touching the store.
func (m *Modal) Cancel() {
	m.open = false
	m.editingID = ""
	m.draft = Draft{}
}

func (m *Modal) IsOpen() bool { return m.open }

// EditingID is empty when the dialog creates a new task.
func (m *Modal) EditingID() string { return m.editingID }

func (m *Modal) Draft() Draft { return m.draft }

// Heading is the dialog title.
func (m *Modal) Heading() string {
	if m.editingID != "" {
		return "Edit Task"
	}
	return "New Task"
}

// Submit validates d and hands it to the store. An invalid draft leaves the
// dialog open with d as its current draft.
func (m *Modal) Submit(ctx context.Context, store Mutator, d Draft) error {
	if !m.open {
		return ErrClosed
	}
	d = d.Normalize()
	m.draft = d
	if err := d.Validate(); err != nil {
		return err
	}

	if m.editingID == "" {
		if _, err := store.Create(ctx, d.TaskDraft()); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
	} else {
		if _, err := store.Update(ctx, m.editingID, d.Patch()); err != nil {
			return fmt.Errorf("update task %s: %w", m.editingID, err)
		}
	}
	m.Cancel()
	return nil
}
