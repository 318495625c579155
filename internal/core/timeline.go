package core

import (
	"fmt"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
)

// ValidateTimeline enforces the per-task date invariants: when both dates
// are set, start must not be after due; a milestone's dates must coincide.
// It runs before any externally triggered date change is accepted, and is
// re-checked on every task a cascade mutates.
func ValidateTimeline(task *models.Task) error {
	if task.StartDate != nil && task.DueDate != nil && task.StartDate.After(*task.DueDate) {
		return fmt.Errorf("task %s: start %s after due %s: %w",
			task.ID, task.StartDate.Format("2006-01-02"), task.DueDate.Format("2006-01-02"), ErrInvalidTimeline)
	}
	if task.IsMilestone && !datesEqual(task.StartDate, task.DueDate) {
		return fmt.Errorf("task %s: %w", task.ID, ErrMilestoneDateMismatch)
	}
	return nil
}

func datesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
