package board

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

func TestParseTarget(t *testing.T) {
	cases := map[string]Target{
		"empty:review":       EmptyTarget(models.StatusReview),
		"column:completed":   ColumnTarget(models.StatusCompleted),
		"in_progress":        ColumnTarget(models.StatusInProgress),
		"task:abc":           TaskTarget("abc"),
		"todo:5f0c-11":       TaskTarget("5f0c-11"),
		" task:with:colons ": TaskTarget("with:colons"),
	}
	for raw, want := range cases {
		got, err := ParseTarget(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}
}

func TestParseTarget_Invalid(t *testing.T) {
	for _, raw := range []string{"", "blocked", "empty:blocked", "column:", "task:", "foo:bar"} {
		_, err := ParseTarget(raw)
		require.ErrorIs(t, err, ErrInvalidTarget, raw)
	}
}

func TestTargetString(t *testing.T) {
	require.Equal(t, "empty:todo", EmptyTarget(models.StatusTodo).String())
	parsed, err := ParseTarget(TaskTarget("x").String())
	require.NoError(t, err)
	require.Equal(t, TaskTarget("x"), parsed)
}
