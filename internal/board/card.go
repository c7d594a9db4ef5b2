package board

import "taskboard/internal/models"

// StatusOption is one entry of a card's status picker.
type StatusOption struct {
	Status  models.TaskStatus `json:"status"`
	Label   string            `json:"label"`
	Current bool              `json:"current"`
	// Disabled marks the current status, which cannot be picked again.
	Disabled bool `json:"disabled"`
}

// StatusOptions lists every column a card can be sent to without dragging.
func StatusOptions(t models.Task) []StatusOption {
	opts := make([]StatusOption, len(models.Statuses))
	for i, s := range models.Statuses {
		current := s == t.Status
		opts[i] = StatusOption{
			Status:   s,
			Label:    s.Meta().Short,
			Current:  current,
			Disabled: current,
		}
	}
	return opts
}
