package models

import "time"

// Task represents a schedulable unit of work inside a workspace. Start and
// due dates are optional; a task with neither is unscheduled and is ignored
// by the cascade engine until dates are assigned.
type Task struct {
	ID          string     `yaml:"id"`
	Workspace   string     `yaml:"workspace"`
	Title       string     `yaml:"title"`
	StartDate   *time.Time `yaml:"start_date,omitempty"`
	DueDate     *time.Time `yaml:"due_date,omitempty"`
	IsMilestone bool       `yaml:"is_milestone"`
	Created     time.Time  `yaml:"created"`
	Updated     time.Time  `yaml:"updated"`
}

// Duration returns the task's date span. The second return value is false
// when either date is unset.
func (t *Task) Duration() (time.Duration, bool) {
	if t.StartDate == nil || t.DueDate == nil {
		return 0, false
	}
	return t.DueDate.Sub(*t.StartDate), true
}

// Clone returns a deep copy of the task. The cascade engine mutates clones
// inside its snapshot so stored tasks are never changed before commit.
func (t *Task) Clone() *Task {
	c := *t
	if t.StartDate != nil {
		s := *t.StartDate
		c.StartDate = &s
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}
