package core

import (
	"testing"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
)

// day returns midnight UTC on the given day of March 2026.
func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func dayPtr(n int) *time.Time {
	d := day(n)
	return &d
}

func testTask(id string, start, due *time.Time) *models.Task {
	return &models.Task{
		ID:        id,
		Workspace: "default",
		Title:     "task " + id,
		StartDate: start,
		DueDate:   due,
	}
}

func testEdge(id, source, target string, depType models.DependencyType) models.DependencyEdge {
	return models.DependencyEdge{
		ID:        id,
		Workspace: "default",
		SourceID:  source,
		TargetID:  target,
		Type:      depType,
	}
}

func assertDates(t *testing.T, task *models.Task, wantStart, wantDue *time.Time) {
	t.Helper()
	if !datesEqual(task.StartDate, wantStart) {
		t.Errorf("task %s start = %v, want %v", task.ID, task.StartDate, wantStart)
	}
	if !datesEqual(task.DueDate, wantDue) {
		t.Errorf("task %s due = %v, want %v", task.ID, task.DueDate, wantDue)
	}
}

func TestCascadeFinishToStartShift(t *testing.T) {
	// A finishes day 20, B may not start before that. B currently starts
	// day 11 with a 4-day span, so B shifts to 20..24.
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(5), dayPtr(20)),
			testTask("B", dayPtr(11), dayPtr(15)),
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "B", models.FinishToStart)},
	)

	muts := Cascade(snap, "A")

	if len(muts) != 1 {
		t.Fatalf("expected 1 mutation, got %d", len(muts))
	}
	if muts[0].TaskID != "B" {
		t.Fatalf("expected mutation on B, got %s", muts[0].TaskID)
	}
	assertDates(t, snap.Tasks["B"], dayPtr(20), dayPtr(24))
}

func TestCascadePreservesDuration(t *testing.T) {
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(10)),
			testTask("B", dayPtr(2), dayPtr(9)),
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "B", models.FinishToStart)},
	)

	before, _ := snap.Tasks["B"].Duration()
	Cascade(snap, "A")
	after, ok := snap.Tasks["B"].Duration()

	if !ok || after != before {
		t.Fatalf("duration changed: before %v, after %v", before, after)
	}
}

func TestCascadeTransitiveChain(t *testing.T) {
	// A -> B -> C, all finish-to-start. Shifting B via A must also shift C.
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(12)),
			testTask("B", dayPtr(5), dayPtr(8)),
			testTask("C", dayPtr(9), dayPtr(10)),
		},
		[]models.DependencyEdge{
			testEdge("DEP-1", "A", "B", models.FinishToStart),
			testEdge("DEP-2", "B", "C", models.FinishToStart),
		},
	)

	muts := Cascade(snap, "A")

	if len(muts) != 2 {
		t.Fatalf("expected 2 mutations, got %d", len(muts))
	}
	assertDates(t, snap.Tasks["B"], dayPtr(12), dayPtr(15))
	assertDates(t, snap.Tasks["C"], dayPtr(15), dayPtr(16))
}

func TestCascadeLazyPropagation(t *testing.T) {
	// B already starts after A's due date, so nothing moves and C is left
	// alone.
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(5)),
			testTask("B", dayPtr(10), dayPtr(12)),
			testTask("C", dayPtr(13), dayPtr(14)),
		},
		[]models.DependencyEdge{
			testEdge("DEP-1", "A", "B", models.FinishToStart),
			testEdge("DEP-2", "B", "C", models.FinishToStart),
		},
	)

	muts := Cascade(snap, "A")

	if len(muts) != 0 {
		t.Fatalf("expected no mutations, got %d", len(muts))
	}
	assertDates(t, snap.Tasks["B"], dayPtr(10), dayPtr(12))
	assertDates(t, snap.Tasks["C"], dayPtr(13), dayPtr(14))
}

func TestCascadeStartToStart(t *testing.T) {
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(10), dayPtr(20)),
			testTask("B", dayPtr(5), dayPtr(7)),
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "B", models.StartToStart)},
	)

	Cascade(snap, "A")

	assertDates(t, snap.Tasks["B"], dayPtr(10), dayPtr(12))
}

func TestCascadeFinishToFinish(t *testing.T) {
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(15)),
			testTask("B", dayPtr(5), dayPtr(10)),
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "B", models.FinishToFinish)},
	)

	Cascade(snap, "A")

	assertDates(t, snap.Tasks["B"], dayPtr(10), dayPtr(15))
}

func TestCascadeStartToFinish(t *testing.T) {
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(12), dayPtr(20)),
			testTask("B", dayPtr(5), dayPtr(10)),
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "B", models.StartToFinish)},
	)

	Cascade(snap, "A")

	assertDates(t, snap.Tasks["B"], dayPtr(7), dayPtr(12))
}

func TestCascadeMultipleIncomingEdgesLatestWins(t *testing.T) {
	// C is constrained by both A (due 10) and B (due 18), finish-to-start.
	// One shift to day 18 must satisfy both.
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(10)),
			testTask("B", dayPtr(1), dayPtr(18)),
			testTask("C", dayPtr(2), dayPtr(4)),
		},
		[]models.DependencyEdge{
			testEdge("DEP-1", "A", "C", models.FinishToStart),
			testEdge("DEP-2", "B", "C", models.FinishToStart),
		},
	)

	Cascade(snap, "A")

	assertDates(t, snap.Tasks["C"], dayPtr(18), dayPtr(20))
}

func TestCascadeAssignsUnsetStart(t *testing.T) {
	// B has no start date. The finish-to-start bound assigns it directly
	// instead of shifting; the set due date stays where it was.
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(10)),
			testTask("B", nil, dayPtr(15)),
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "B", models.FinishToStart)},
	)

	muts := Cascade(snap, "A")

	if len(muts) != 1 {
		t.Fatalf("expected 1 mutation, got %d", len(muts))
	}
	assertDates(t, snap.Tasks["B"], dayPtr(10), dayPtr(15))
}

func TestCascadeAssignedStartCollapsesInvertedRange(t *testing.T) {
	// The assigned start lands after the set due date. There was no span to
	// preserve, so the range collapses to the later date.
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(20)),
			testTask("B", nil, dayPtr(15)),
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "B", models.FinishToStart)},
	)

	Cascade(snap, "A")

	assertDates(t, snap.Tasks["B"], dayPtr(20), dayPtr(20))
}

func TestCascadeFinishToFinishAssignsUnsetDue(t *testing.T) {
	// A dependent with no dates gets only the bounded date assigned; the
	// start date stays unset because no constraint touches it.
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(10)),
			testTask("B", nil, nil),
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "B", models.FinishToFinish)},
	)

	muts := Cascade(snap, "A")

	if len(muts) != 1 {
		t.Fatalf("expected 1 mutation, got %d", len(muts))
	}
	assertDates(t, snap.Tasks["B"], nil, dayPtr(10))
}

func TestCascadeMilestoneDependentStaysPoint(t *testing.T) {
	milestone := testTask("M", dayPtr(8), dayPtr(8))
	milestone.IsMilestone = true

	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(12)),
			milestone,
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "M", models.FinishToStart)},
	)

	Cascade(snap, "A")

	m := snap.Tasks["M"]
	assertDates(t, m, dayPtr(12), dayPtr(12))
	if !m.IsMilestone {
		t.Fatal("milestone flag lost during cascade")
	}
}

func TestCascadeCrossEdgeSettlesSiblingFirst(t *testing.T) {
	// A -> B, A -> C and C -> B. B must not be finalized off A alone: C also
	// shifts, and B's start has to clear C's new due date.
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(10)),
			testTask("B", dayPtr(2), dayPtr(3)),
			testTask("C", dayPtr(2), dayPtr(4)),
		},
		[]models.DependencyEdge{
			testEdge("DEP-1", "A", "B", models.FinishToStart),
			testEdge("DEP-2", "A", "C", models.FinishToStart),
			testEdge("DEP-3", "C", "B", models.FinishToStart),
		},
	)

	muts := Cascade(snap, "A")

	if len(muts) != 2 {
		t.Fatalf("expected 2 mutations, got %d: %+v", len(muts), muts)
	}
	// C moves to 10..12 off A, then B must clear C's due date, not just A's.
	assertDates(t, snap.Tasks["C"], dayPtr(10), dayPtr(12))
	assertDates(t, snap.Tasks["B"], dayPtr(12), dayPtr(13))
}

func TestCascadeDiamondShiftsOnce(t *testing.T) {
	// A -> B -> D and A -> C -> D. D must be shifted exactly once, after both
	// B and C have settled, to the larger of the two bounds.
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(10)),
			testTask("B", dayPtr(2), dayPtr(4)),
			testTask("C", dayPtr(2), dayPtr(6)),
			testTask("D", dayPtr(5), dayPtr(7)),
		},
		[]models.DependencyEdge{
			testEdge("DEP-1", "A", "B", models.FinishToStart),
			testEdge("DEP-2", "A", "C", models.FinishToStart),
			testEdge("DEP-3", "B", "D", models.FinishToStart),
			testEdge("DEP-4", "C", "D", models.FinishToStart),
		},
	)

	muts := Cascade(snap, "A")

	seen := map[string]int{}
	for _, m := range muts {
		seen[m.TaskID]++
	}
	if seen["D"] != 1 {
		t.Fatalf("D mutated %d times, want 1", seen["D"])
	}
	// B lands on 10..12, C on 10..14, so D's strongest bound is C's due.
	assertDates(t, snap.Tasks["D"], dayPtr(14), dayPtr(16))
}

func TestCascadeIsFixedPoint(t *testing.T) {
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", dayPtr(1), dayPtr(12)),
			testTask("B", dayPtr(5), dayPtr(8)),
			testTask("C", dayPtr(9), dayPtr(10)),
		},
		[]models.DependencyEdge{
			testEdge("DEP-1", "A", "B", models.FinishToStart),
			testEdge("DEP-2", "B", "C", models.StartToStart),
		},
	)

	first := Cascade(snap, "A")
	second := Cascade(snap, "A")

	if len(first) == 0 {
		t.Fatal("expected the first pass to mutate")
	}
	if len(second) != 0 {
		t.Fatalf("second pass mutated %d tasks, want 0", len(second))
	}
}

func TestCascadeDanglingEdgeSkipped(t *testing.T) {
	snap := BuildSnapshot(
		[]*models.Task{testTask("A", dayPtr(1), dayPtr(10))},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "GONE", models.FinishToStart)},
	)

	muts := Cascade(snap, "A")

	if len(muts) != 0 {
		t.Fatalf("expected no mutations for a dangling edge, got %d", len(muts))
	}
}

func TestBuildSnapshotClonesTasks(t *testing.T) {
	original := testTask("A", dayPtr(1), dayPtr(5))
	snap := BuildSnapshot([]*models.Task{original}, nil)

	shifted := day(9)
	snap.Tasks["A"].DueDate = &shifted

	if !original.DueDate.Equal(day(5)) {
		t.Fatal("snapshot mutation leaked into the caller's task")
	}
}

func TestSnapshotAccessors(t *testing.T) {
	snap := BuildSnapshot(
		[]*models.Task{
			testTask("A", nil, nil),
			testTask("B", nil, nil),
		},
		[]models.DependencyEdge{testEdge("DEP-1", "A", "B", models.FinishToStart)},
	)

	if snap.Task("A") == nil || snap.Task("missing") != nil {
		t.Fatal("Task lookup wrong")
	}
	if got := snap.Dependents("A"); len(got) != 1 || got[0].TargetID != "B" {
		t.Fatalf("Dependents(A) = %v", got)
	}
	if got := snap.Blockers("B"); len(got) != 1 || got[0].SourceID != "A" {
		t.Fatalf("Blockers(B) = %v", got)
	}
}
