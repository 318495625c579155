package models

import "time"

// DateMutation records one task's date change applied during a timeline
// update or cascade. The ordered mutation list is returned to the caller,
// who owns activity logging and broadcast.
type DateMutation struct {
	TaskID   string     `json:"task_id"`
	OldStart *time.Time `json:"old_start,omitempty"`
	OldDue   *time.Time `json:"old_due,omitempty"`
	NewStart *time.Time `json:"new_start,omitempty"`
	NewDue   *time.Time `json:"new_due,omitempty"`
}

// Changed reports whether the mutation actually moved either date.
func (m DateMutation) Changed() bool {
	return !equalDate(m.OldStart, m.NewStart) || !equalDate(m.OldDue, m.NewDue)
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
