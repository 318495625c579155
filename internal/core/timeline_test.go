package core

import (
	"errors"
	"testing"
)

func TestValidateTimelineAccepts(t *testing.T) {
	for _, task := range []struct {
		name  string
		start *int
		due   *int
	}{
		{"both unset", nil, nil},
		{"only start", intPtr(3), nil},
		{"only due", nil, intPtr(3)},
		{"ordered range", intPtr(3), intPtr(8)},
		{"zero-length range", intPtr(5), intPtr(5)},
	} {
		t.Run(task.name, func(t *testing.T) {
			tk := testTask("T", nil, nil)
			if task.start != nil {
				tk.StartDate = dayPtr(*task.start)
			}
			if task.due != nil {
				tk.DueDate = dayPtr(*task.due)
			}
			if err := ValidateTimeline(tk); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func intPtr(n int) *int { return &n }

func TestValidateTimelineStartAfterDue(t *testing.T) {
	tk := testTask("T", dayPtr(9), dayPtr(3))

	err := ValidateTimeline(tk)

	if !errors.Is(err, ErrInvalidTimeline) {
		t.Fatalf("expected ErrInvalidTimeline, got %v", err)
	}
}

func TestValidateTimelineMilestoneMismatch(t *testing.T) {
	tk := testTask("T", dayPtr(3), dayPtr(4))
	tk.IsMilestone = true

	err := ValidateTimeline(tk)

	if !errors.Is(err, ErrMilestoneDateMismatch) {
		t.Fatalf("expected ErrMilestoneDateMismatch, got %v", err)
	}
}

func TestValidateTimelineMilestoneWithOneDateUnset(t *testing.T) {
	tk := testTask("T", dayPtr(3), nil)
	tk.IsMilestone = true

	if err := ValidateTimeline(tk); !errors.Is(err, ErrMilestoneDateMismatch) {
		t.Fatalf("expected ErrMilestoneDateMismatch, got %v", err)
	}
}

func TestValidateTimelineMilestonePoint(t *testing.T) {
	tk := testTask("T", dayPtr(3), dayPtr(3))
	tk.IsMilestone = true

	if err := ValidateTimeline(tk); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateTimelineUnscheduledMilestone(t *testing.T) {
	tk := testTask("T", nil, nil)
	tk.IsMilestone = true

	if err := ValidateTimeline(tk); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
