// Package board derives the column view of the task collection and turns
// drag gestures into status changes.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/models"
)

var (
	ErrNotDragging   = errors.New("no drag in progress")
	ErrUnknownTask   = errors.New("unknown task")
	ErrInvalidTarget = errors.New("invalid drop target")
)

// Tasks is the part of the task store the controller reads and mutates.
type Tasks interface {
	List() []models.Task
	Get(id string) (models.Task, bool)
	Update(ctx context.Context, id string, patch models.TaskPatch) (bool, error)
}

// Phase of the drag state machine.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseDragging Phase = "dragging"
)

// Transition reports what a gesture event did to the active task.
type Transition struct {
	TaskID string            `json:"taskId"`
	From   models.TaskStatus `json:"from,omitempty"`
	To     models.TaskStatus `json:"to,omitempty"`
	Moved  bool              `json:"moved"`
	// ReorderIgnored is set when a card was dropped on another card of its
	// own column. Positions within a column are not persisted.
	ReorderIgnored bool `json:"reorderIgnored,omitempty"`
}

// Column is one status column with its tasks in collection order.
type Column struct {
	models.ColumnMeta
	Tasks []models.Task `json:"tasks"`
	Count int           `json:"count"`
}

// Controller runs the idle/dragging state machine for a single board.
type Controller struct {
	tasks Tasks
	log   *log.Entry

	mu       sync.Mutex
	dragging bool
	active   string
}

func NewController(tasks Tasks) *Controller {
	return &Controller{
		tasks: tasks,
		log:   log.WithField("component", "board"),
	}
}

// Columns groups the current collection by status, in board order.
func (c *Controller) Columns() []Column {
	return Group(c.tasks.List())
}

// Group buckets tasks into the four status columns, keeping their relative
// order. Tasks with an unknown status are dropped.
func Group(tasks []models.Task) []Column {
	cols := make([]Column, len(models.Statuses))
	index := make(map[models.TaskStatus]int, len(models.Statuses))
	for i, s := range models.Statuses {
		cols[i] = Column{ColumnMeta: s.Meta(), Tasks: []models.Task{}}
		index[s] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	for i := range cols {
		cols[i].Count = len(cols[i].Tasks)
	}
	return cols
}

// State returns the current phase and, while dragging, the active task id.
func (c *Controller) State() (Phase, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dragging {
		return PhaseIdle, ""
	}
	return PhaseDragging, c.active
}

// Active returns the id of the task being dragged, for the drag overlay.
func (c *Controller) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.dragging
}

// Start begins a gesture on the task with the given id. Starting while
// another gesture is active replaces it.
func (c *Controller) Start(id string) error {
	if _, ok := c.tasks.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dragging && c.active != id {
		c.log.WithField("previous", c.active).Debug("drag restarted without end")
	}
	c.dragging = true
	c.active = id
	return nil
}

// Over moves the active task into the target's column as soon as the
// pointer crosses into it.
func (c *Controller) Over(ctx context.Context, target Target) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dragging {
		return Transition{}, ErrNotDragging
	}
	tr, _, err := c.move(ctx, target)
	return tr, err
}

// End finishes the gesture. A nil target means the card was released
// outside any drop zone.
func (c *Controller) End(ctx context.Context, target *Target) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dragging {
		return Transition{}, ErrNotDragging
	}
	id := c.active
	c.dragging = false
	c.active = ""

	if target == nil {
		return Transition{TaskID: id}, nil
	}
	tr, sameColumn, err := c.moveTask(ctx, id, *target)
	if err != nil {
		return tr, err
	}
	if sameColumn && target.Kind == TargetTask && target.ID != id {
		tr.ReorderIgnored = true
		c.log.WithFields(log.Fields{
			"task":   id,
			"over":   target.ID,
			"column": tr.To,
		}).Info("reorder within column requested; order is not persisted")
	}
	return tr, nil
}

// Cancel abandons the gesture. Column changes already applied by Over stay.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = false
	c.active = ""
}

// ChangeStatus is the non-drag path for moving a card between columns.
func (c *Controller) ChangeStatus(ctx context.Context, id string, status models.TaskStatus) (Transition, error) {
	if !status.Valid() {
		return Transition{TaskID: id}, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}
	tr, _, err := c.moveTask(ctx, id, ColumnTarget(status))
	if err == nil && tr.From == "" {
		return tr, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	return tr, err
}

// move must be called with mu held.
func (c *Controller) move(ctx context.Context, target Target) (Transition, bool, error) {
	return c.moveTask(ctx, c.active, target)
}

// moveTask applies the status change implied by target. sameColumn reports
// that the target resolved to the column the task already sits in.
func (c *Controller) moveTask(ctx context.Context, id string, target Target) (tr Transition, sameColumn bool, err error) {
	tr.TaskID = id
	task, ok := c.tasks.Get(id)
	if !ok {
		// deleted mid-gesture
		return tr, false, nil
	}
	tr.From = task.Status

	to, ok := c.resolve(target)
	if !ok {
		c.log.WithField("target", target.String()).Debug("unresolvable drop target ignored")
		return tr, false, nil
	}
	tr.To = to
	if to == task.Status {
		return tr, true, nil
	}

	found, err := c.tasks.Update(ctx, id, models.StatusPatch(to))
	if err != nil {
		return tr, false, err
	}
	tr.Moved = found
	return tr, false, nil
}

// resolve maps a drop target to the column it belongs to. Empty-column
// placeholders and column containers name their status directly; a card
// resolves to the column of that card.
func (c *Controller) resolve(t Target) (models.TaskStatus, bool) {
	switch t.Kind {
	case TargetEmpty, TargetColumn:
		s := models.TaskStatus(t.ID)
		return s, s.Valid()
	case TargetTask:
		task, ok := c.tasks.Get(t.ID)
		if !ok {
			return "", false
		}
		return task.Status, true
	}
	return "", false
}
