package board

import (
	"fmt"
	"strings"

	"taskboard/internal/models"
)

// TargetKind tells what sits under the pointer.
type TargetKind string

const (
	// TargetEmpty is the placeholder rendered inside a column with no cards.
	TargetEmpty  TargetKind = "empty"
	TargetTask   TargetKind = "task"
	TargetColumn TargetKind = "column"
)

// Target is a drop target reported by the gesture layer. For TargetTask the
// ID is a task id, otherwise it is a status.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func EmptyTarget(s models.TaskStatus) Target  { return Target{Kind: TargetEmpty, ID: string(s)} }
func ColumnTarget(s models.TaskStatus) Target { return Target{Kind: TargetColumn, ID: string(s)} }
func TaskTarget(id string) Target             { return Target{Kind: TargetTask, ID: id} }

func (t Target) String() string {
	return string(t.Kind) + ":" + t.ID
}

// ParseTarget decodes the identifiers a drag layer attaches to drop zones:
//
//	empty:<status>    empty-column placeholder
//	task:<id>         a card
//	<status>:<id>     a card, keyed by the column it was rendered in
//	column:<status>   a column container
//	<status>          a column container
func ParseTarget(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	prefix, rest, hasColon := strings.Cut(raw, ":")
	if !hasColon {
		if models.TaskStatus(raw).Valid() {
			return ColumnTarget(models.TaskStatus(raw)), nil
		}
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}
	if rest == "" {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}
	switch TargetKind(prefix) {
	case TargetEmpty, TargetColumn:
		if !models.TaskStatus(rest).Valid() {
			return Target{}, fmt.Errorf("%w: unknown status in %q", ErrInvalidTarget, raw)
		}
		return Target{Kind: TargetKind(prefix), ID: rest}, nil
	case TargetTask:
		return TaskTarget(rest), nil
	}
	if models.TaskStatus(prefix).Valid() {
		return TaskTarget(rest), nil
	}
	return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
}
