package board

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
	"taskboard/internal/storage"
	"taskboard/internal/store"
)

// countingTasks wraps the store and records every status update issued.
type countingTasks struct {
	*store.Store
	updates []models.TaskStatus
}

func (c *countingTasks) Update(ctx context.Context, id string, patch models.TaskPatch) (bool, error) {
	if patch.Status != nil {
		c.updates = append(c.updates, *patch.Status)
	}
	return c.Store.Update(ctx, id, patch)
}

// newBoard returns a controller over the seed board (one task per status,
// in board order) plus the ids of those tasks.
func newBoard(t *testing.T) (*Controller, *countingTasks, []string) {
	t.Helper()
	s := store.New(context.Background(), storage.NewMemory(storage.MemoryOptions{}))
	tasks := &countingTasks{Store: s}
	var ids []string
	for _, task := range s.List() {
		ids = append(ids, task.ID)
	}
	return NewController(tasks), tasks, ids
}

func statusOf(t *testing.T, tasks *countingTasks, id string) models.TaskStatus {
	t.Helper()
	task, ok := tasks.Get(id)
	require.True(t, ok)
	return task.Status
}

func TestColumns_GroupsInCollectionOrder(t *testing.T) {
	c, tasks, ids := newBoard(t)
	ctx := context.Background()
	created, err := tasks.Create(ctx, models.TaskDraft{Title: "New", Status: models.StatusReview})
	require.NoError(t, err)

	cols := c.Columns()
	require.Len(t, cols, 4)
	require.Equal(t, "To Do", cols[0].Title)
	require.Equal(t, "Completed", cols[3].Title)
	require.Equal(t, 2, cols[2].Count)
	require.Equal(t, created.ID, cols[2].Tasks[0].ID)
	require.Equal(t, ids[2], cols[2].Tasks[1].ID)
	for _, col := range cols {
		for _, task := range col.Tasks {
			require.Equal(t, col.Status, task.Status)
		}
	}
}

func TestGroup_EmptyColumnsAreNonNil(t *testing.T) {
	cols := Group(nil)
	for _, col := range cols {
		require.NotNil(t, col.Tasks)
		require.Zero(t, col.Count)
	}
}

func TestStart(t *testing.T) {
	c, _, ids := newBoard(t)

	phase, active := c.State()
	require.Equal(t, PhaseIdle, phase)
	require.Empty(t, active)

	require.ErrorIs(t, c.Start("ghost"), ErrUnknownTask)
	require.NoError(t, c.Start(ids[0]))

	phase, active = c.State()
	require.Equal(t, PhaseDragging, phase)
	require.Equal(t, ids[0], active)

	require.NoError(t, c.Start(ids[1]))
	id, ok := c.Active()
	require.True(t, ok)
	require.Equal(t, ids[1], id)
}

func TestOver_MovesImmediately(t *testing.T) {
	c, tasks, ids := newBoard(t)
	ctx := context.Background()
	todo, review := ids[0], ids[2]

	require.NoError(t, c.Start(todo))
	tr, err := c.Over(ctx, TaskTarget(review))
	require.NoError(t, err)
	require.True(t, tr.Moved)
	require.Equal(t, models.StatusTodo, tr.From)
	require.Equal(t, models.StatusReview, tr.To)

	// before End fires
	require.Equal(t, models.StatusReview, statusOf(t, tasks, todo))
}

func TestOver_OneUpdatePerColumnChange(t *testing.T) {
	c, tasks, ids := newBoard(t)
	ctx := context.Background()

	require.NoError(t, c.Start(ids[0]))
	for _, target := range []Target{
		ColumnTarget(models.StatusInProgress),
		TaskTarget(ids[1]),
		ColumnTarget(models.StatusInProgress),
		ColumnTarget(models.StatusReview),
		EmptyTarget(models.StatusReview),
		ColumnTarget(models.StatusInProgress),
	} {
		_, err := c.Over(ctx, target)
		require.NoError(t, err)
	}
	require.Equal(t, []models.TaskStatus{models.StatusInProgress, models.StatusReview, models.StatusInProgress}, tasks.updates)
}

func TestOver_SameColumnNoUpdate(t *testing.T) {
	c, tasks, ids := newBoard(t)
	ctx := context.Background()

	require.NoError(t, c.Start(ids[0]))
	for _, target := range []Target{
		ColumnTarget(models.StatusTodo),
		TaskTarget(ids[0]),
		EmptyTarget(models.StatusTodo),
	} {
		tr, err := c.Over(ctx, target)
		require.NoError(t, err)
		require.False(t, tr.Moved)
	}
	require.Empty(t, tasks.updates)
}

func TestOver_UnresolvableTargetIgnored(t *testing.T) {
	c, tasks, ids := newBoard(t)
	require.NoError(t, c.Start(ids[0]))

	tr, err := c.Over(context.Background(), TaskTarget("ghost"))
	require.NoError(t, err)
	require.False(t, tr.Moved)
	tr, err = c.Over(context.Background(), Target{Kind: TargetColumn, ID: "blocked"})
	require.NoError(t, err)
	require.False(t, tr.Moved)
	require.Empty(t, tasks.updates)
}

func TestOver_WhileIdle(t *testing.T) {
	c, tasks, _ := newBoard(t)
	_, err := c.Over(context.Background(), ColumnTarget(models.StatusReview))
	require.ErrorIs(t, err, ErrNotDragging)
	require.Empty(t, tasks.updates)
}

func TestEnd_EmptyColumnSentinel(t *testing.T) {
	for _, from := range []int{0, 1, 2, 3} {
		c, tasks, ids := newBoard(t)
		require.NoError(t, c.Start(ids[from]))
		_, err := c.End(context.Background(), &Target{Kind: TargetEmpty, ID: string(models.StatusCompleted)})
		require.NoError(t, err)
		require.Equal(t, models.StatusCompleted, statusOf(t, tasks, ids[from]))
	}
}

func TestEnd_AfterOverNoSecondUpdate(t *testing.T) {
	c, tasks, ids := newBoard(t)
	ctx := context.Background()

	require.NoError(t, c.Start(ids[0]))
	_, err := c.Over(ctx, ColumnTarget(models.StatusReview))
	require.NoError(t, err)
	target := TaskTarget(ids[2])
	tr, err := c.End(ctx, &target)
	require.NoError(t, err)
	require.False(t, tr.Moved)
	require.True(t, tr.ReorderIgnored)
	require.Len(t, tasks.updates, 1)

	phase, _ := c.State()
	require.Equal(t, PhaseIdle, phase)
}

func TestEnd_SameColumnReorderNotPersisted(t *testing.T) {
	c, tasks, ids := newBoard(t)
	ctx := context.Background()
	second, err := tasks.Create(ctx, models.TaskDraft{Title: "Second", Status: models.StatusTodo})
	require.NoError(t, err)
	before := tasks.List()

	require.NoError(t, c.Start(ids[0]))
	target := TaskTarget(second.ID)
	tr, err := c.End(ctx, &target)
	require.NoError(t, err)
	require.True(t, tr.ReorderIgnored)
	require.Equal(t, before, tasks.List())
	require.Empty(t, tasks.updates)
}

func TestEnd_WithoutOverStillMoves(t *testing.T) {
	c, tasks, ids := newBoard(t)
	require.NoError(t, c.Start(ids[3]))
	target := ColumnTarget(models.StatusTodo)
	tr, err := c.End(context.Background(), &target)
	require.NoError(t, err)
	require.True(t, tr.Moved)
	require.Equal(t, models.StatusTodo, statusOf(t, tasks, ids[3]))
}

func TestEnd_OutsideDropZone(t *testing.T) {
	c, tasks, ids := newBoard(t)
	require.NoError(t, c.Start(ids[0]))
	tr, err := c.End(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, tr.Moved)
	require.Empty(t, tasks.updates)

	_, ok := c.Active()
	require.False(t, ok)
	_, err = c.End(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotDragging)
}

func TestCancel_KeepsAppliedMoves(t *testing.T) {
	c, tasks, ids := newBoard(t)
	require.NoError(t, c.Start(ids[0]))
	_, err := c.Over(context.Background(), ColumnTarget(models.StatusReview))
	require.NoError(t, err)

	c.Cancel()
	_, ok := c.Active()
	require.False(t, ok)
	require.Equal(t, models.StatusReview, statusOf(t, tasks, ids[0]))
}

func TestOver_ActiveTaskDeleted(t *testing.T) {
	c, tasks, ids := newBoard(t)
	require.NoError(t, c.Start(ids[0]))
	tasks.Delete(context.Background(), ids[0])

	tr, err := c.Over(context.Background(), ColumnTarget(models.StatusReview))
	require.NoError(t, err)
	require.False(t, tr.Moved)
	require.Empty(t, tasks.updates)
}

func TestChangeStatus(t *testing.T) {
	c, tasks, ids := newBoard(t)
	ctx := context.Background()

	tr, err := c.ChangeStatus(ctx, ids[0], models.StatusCompleted)
	require.NoError(t, err)
	require.True(t, tr.Moved)
	require.Equal(t, models.StatusCompleted, statusOf(t, tasks, ids[0]))

	tr, err = c.ChangeStatus(ctx, ids[0], models.StatusCompleted)
	require.NoError(t, err)
	require.False(t, tr.Moved)
	require.Len(t, tasks.updates, 1)

	_, err = c.ChangeStatus(ctx, "ghost", models.StatusTodo)
	require.ErrorIs(t, err, ErrUnknownTask)
	_, err = c.ChangeStatus(ctx, ids[0], "blocked")
	require.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestStatusOptions(t *testing.T) {
	opts := StatusOptions(models.Task{ID: "1", Status: models.StatusReview})
	require.Len(t, opts, 4)
	for i, opt := range opts {
		require.Equal(t, models.Statuses[i], opt.Status)
		require.Equal(t, opt.Status == models.StatusReview, opt.Current)
		require.Equal(t, opt.Current, opt.Disabled)
	}
	require.Equal(t, "Done", opts[3].Label)
}
