package store

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"taskboard/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Tasks []models.Task `yaml:"tasks"`
}

var seedTemplate = mustParseSeed(seedYAML)

func mustParseSeed(data []byte) []models.Task {
	tasks, err := parseSeed(data)
	if err != nil {
		panic(fmt.Sprintf("store: embedded seed: %v", err))
	}
	return tasks
}

func parseSeed(data []byte) ([]models.Task, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Tasks) == 0 {
		return nil, fmt.Errorf("seed has no tasks")
	}
	for i, t := range f.Tasks {
		d := models.TaskDraft{Title: t.Title, Status: t.Status, Priority: t.Priority}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("seed task %d: %w", i, err)
		}
	}
	return f.Tasks, nil
}

// SeedTasks returns a fresh copy of the default board with newly drawn ids.
func SeedTasks(newID func() string) []models.Task {
	tasks := make([]models.Task, len(seedTemplate))
	for i, t := range seedTemplate {
		c := t.Clone()
		c.ID = newID()
		tasks[i] = c
	}
	return tasks
}
