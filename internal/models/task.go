package models

import (
	"errors"
	"fmt"
	"strings"
)

// TaskStatus represents the column a task lives in
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists every status in board column order.
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusReview, StatusCompleted}

// Valid reports whether s is one of the four board statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
)

// Task is a single card on the board.
type Task struct {
	ID          string       `json:"id" yaml:"-"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description,omitempty" yaml:"description"`
	Status      TaskStatus   `json:"status" yaml:"status"`
	Priority    TaskPriority `json:"priority,omitempty" yaml:"priority"`
	Tags        []string     `json:"tags" yaml:"tags"`
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	c := t
	c.Tags = append(make([]string, 0, len(t.Tags)), t.Tags...)
	return c
}

// TaskDraft holds every task attribute except the id.
type TaskDraft struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

// Validate checks the draft against the task invariants. An empty
// priority is allowed and defaults to medium at creation.
func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status)
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, d.Priority)
	}
	return nil
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Status      *TaskStatus   `json:"status"`
	Priority    *TaskPriority `json:"priority"`
	Tags        *[]string     `json:"tags"`
}

// StatusPatch builds a patch that only moves a task to another column.
func StatusPatch(s TaskStatus) TaskPatch {
	return TaskPatch{Status: &s}
}

func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	if p.Priority != nil && *p.Priority != "" && !p.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, *p.Priority)
	}
	return nil
}

// Apply merges the supplied fields into t. The id is never touched.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Tags != nil {
		t.Tags = append(make([]string, 0, len(*p.Tags)), *p.Tags...)
	}
}
