package store

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"taskboard/internal/models"
)

var ErrMalformed = errors.New("malformed task collection")

// Encode serializes the collection as a JSON array. A nil collection is
// written as an empty array so the stored value is always an array.
func Encode(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return sonic.ConfigStd.Marshal(tasks)
}

// Decode parses a persisted collection. Anything other than an array of
// tasks with unique ids and known statuses is rejected as a whole.
func Decode(data []byte) ([]models.Task, error) {
	var tasks []models.Task
	if err := sonic.ConfigStd.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if tasks == nil {
		return nil, fmt.Errorf("%w: not an array", ErrMalformed)
	}
	seen := make(map[string]struct{}, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			return nil, fmt.Errorf("%w: task %d has no id", ErrMalformed, i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrMalformed, t.ID)
		}
		seen[t.ID] = struct{}{}
		if !t.Status.Valid() {
			return nil, fmt.Errorf("%w: task %s has status %q", ErrMalformed, t.ID, t.Status)
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
	}
	return tasks, nil
}
