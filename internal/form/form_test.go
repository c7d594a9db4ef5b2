package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

type stubMutator struct {
	created []models.TaskDraft
	updated map[string]models.TaskPatch
	err     error
}

func (s *stubMutator) Create(_ context.Context, d models.TaskDraft) (models.Task, error) {
	if s.err != nil {
		return models.Task{}, s.err
	}
	s.created = append(s.created, d)
	return models.Task{ID: "new", Title: d.Title, Status: d.Status}, nil
}

func (s *stubMutator) Update(_ context.Context, id string, p models.TaskPatch) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.updated == nil {
		s.updated = map[string]models.TaskPatch{}
	}
	s.updated[id] = p
	return true, nil
}

func TestNewDraft_Defaults(t *testing.T) {
	d := NewDraft(nil)
	require.Equal(t, Draft{Status: models.StatusTodo, Priority: models.PriorityMedium}, d)

	d = NewDraft(&models.Task{Title: "T", Description: "D", Status: models.StatusReview})
	require.Equal(t, Draft{Title: "T", Description: "D", Status: models.StatusReview, Priority: models.PriorityMedium}, d)
}

func TestDraft_NormalizeAndValidate(t *testing.T) {
	d := Draft{Title: "  Ship it  ", Description: "   "}.Normalize()
	require.Equal(t, "Ship it", d.Title)
	require.Empty(t, d.Description)
	require.Equal(t, models.StatusTodo, d.Status)
	require.Equal(t, models.PriorityMedium, d.Priority)
	require.NoError(t, d.Validate())

	require.ErrorIs(t, Draft{Title: " \t"}.Normalize().Validate(), models.ErrTitleRequired)
	require.ErrorIs(t, Draft{Title: "x", Status: "later"}.Normalize().Validate(), models.ErrInvalidStatus)
	require.ErrorIs(t, Draft{Title: "x", Priority: "asap"}.Normalize().Validate(), models.ErrInvalidPriority)
}

func TestModal_CreateFlow(t *testing.T) {
	var m Modal
	store := &stubMutator{}
	m.OpenNew()
	require.True(t, m.IsOpen())
	require.Equal(t, "New Task", m.Heading())

	err := m.Submit(context.Background(), store, Draft{Title: " Write docs ", Description: " later ", Priority: models.PriorityHigh})
	require.NoError(t, err)
	require.False(t, m.IsOpen())
	require.Equal(t, []models.TaskDraft{{
		Title:       "Write docs",
		Description: "later",
		Status:      models.StatusTodo,
		Priority:    models.PriorityHigh,
		Tags:        []string{},
	}}, store.created)
	require.Empty(t, store.updated)
}

func TestModal_EditFlow(t *testing.T) {
	var m Modal
	store := &stubMutator{}
	task := models.Task{ID: "t1", Title: "Old", Description: "gone soon", Status: models.StatusTodo, Priority: models.PriorityLow, Tags: []string{"keep"}}
	m.OpenEdit(task)
	require.Equal(t, "Edit Task", m.Heading())
	require.Equal(t, "t1", m.EditingID())
	require.Equal(t, "Old", m.Draft().Title)

	d := m.Draft()
	d.Title = "New"
	d.Description = ""
	d.Status = models.StatusCompleted
	require.NoError(t, m.Submit(context.Background(), store, d))

	p := store.updated["t1"]
	require.Equal(t, "New", *p.Title)
	require.Equal(t, "", *p.Description)
	require.Equal(t, models.StatusCompleted, *p.Status)
	require.Equal(t, models.PriorityLow, *p.Priority)
	require.Nil(t, p.Tags)
	require.Empty(t, store.created)
	require.False(t, m.IsOpen())
}

func TestModal_InvalidSubmitStaysOpen(t *testing.T) {
	var m Modal
	store := &stubMutator{}
	m.OpenNew()

	err := m.Submit(context.Background(), store, Draft{Title: "   ", Description: "x"})
	require.ErrorIs(t, err, models.ErrTitleRequired)
	require.True(t, m.IsOpen())
	require.Equal(t, "x", m.Draft().Description)
	require.Empty(t, store.created)
}

func TestModal_CancelDiscards(t *testing.T) {
	var m Modal
	store := &stubMutator{}
	m.OpenEdit(models.Task{ID: "t1", Title: "Keep", Status: models.StatusTodo})
	m.Cancel()

	require.False(t, m.IsOpen())
	require.Empty(t, m.EditingID())
	require.ErrorIs(t, m.Submit(context.Background(), store, Draft{Title: "x"}), ErrClosed)
	require.Empty(t, store.created)
	require.Empty(t, store.updated)
}

func TestModal_StoreErrorKeepsOpen(t *testing.T) {
	var m Modal
	boom := errors.New("boom")
	m.OpenNew()
	err := m.Submit(context.Background(), &stubMutator{err: boom}, Draft{Title: "x"})
	require.ErrorIs(t, err, boom)
	require.True(t, m.IsOpen())
}
