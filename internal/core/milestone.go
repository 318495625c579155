package core

import "github.com/cascadehq/cascade/pkg/models"

// SetMilestone enables or disables the milestone flag on the task, mutating
// it in place. Enabling collapses the date range to a single point: due
// takes the start date, or start takes the due date when only due is set.
// Disabling clears the flag without touching dates. The caller re-runs
// ValidateTimeline afterwards.
func SetMilestone(task *models.Task, enable bool) {
	task.IsMilestone = enable
	if !enable {
		return
	}
	switch {
	case task.StartDate != nil:
		task.DueDate = copyDate(task.StartDate)
	case task.DueDate != nil:
		task.StartDate = copyDate(task.DueDate)
	}
}
