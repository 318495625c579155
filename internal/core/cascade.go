package core

import (
	"sort"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
)

// Cascade propagates a date change on the task rootID through the snapshot's
// dependency graph and returns the ordered list of mutations needed to
// satisfy every constraint. The snapshot's task copies are updated in place;
// persistence is the caller's job.
//
// The tasks reachable from the root are processed in topological order, so a
// dependent is examined only after every blocker inside the reachable set has
// settled. A plain level-order walk is not enough here: with a cross edge
// such as A -> B, A -> C, C -> B, the walk reaches B from A while C still
// holds its old dates, and B is never reconciled after C moves. Each task is
// examined at most once, only when one of its blockers actually moved: tasks
// only ever shift forward, so a task that did not move cannot newly violate
// its own dependents.
//
// Cascade is a fixed-point computation: running it again with no further
// external change yields zero mutations.
func Cascade(snap *Snapshot, rootID string) []models.DateMutation {
	moved := map[string]bool{rootID: true}
	var mutations []models.DateMutation

	for _, id := range cascadeOrder(snap, rootID) {
		task := snap.Tasks[id]
		if task == nil {
			// Dangling edge; nothing to shift.
			continue
		}
		blockerMoved := false
		for _, edge := range snap.Incoming[id] {
			if moved[edge.SourceID] {
				blockerMoved = true
				break
			}
		}
		if !blockerMoved {
			continue
		}
		if mut, changed := satisfyBounds(snap, task); changed {
			mutations = append(mutations, mut)
			moved[id] = true
		}
	}

	return mutations
}

// cascadeOrder returns the tasks reachable from rootID, excluding the root
// itself, ordered so every blocker inside the set precedes its dependents.
// The root's dates are externally fixed, so it is never a candidate even if
// corrupted data smuggled a back edge past the add-time detector; tasks on a
// cycle never reach in-degree zero and are dropped, which stops the cascade
// at the corruption instead of looping.
func cascadeOrder(snap *Snapshot, rootID string) []string {
	reachable := map[string]bool{}
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, edge := range snap.Outgoing[id] {
			target := edge.TargetID
			if target == rootID || reachable[target] {
				continue
			}
			reachable[target] = true
			stack = append(stack, target)
		}
	}

	indegree := make(map[string]int, len(reachable))
	var queue []string
	for id := range reachable {
		for _, edge := range snap.Incoming[id] {
			if reachable[edge.SourceID] {
				indegree[id]++
			}
		}
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(reachable))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, edge := range snap.Outgoing[id] {
			target := edge.TargetID
			if !reachable[target] {
				continue
			}
			indegree[target]--
			if indegree[target] == 0 {
				queue = append(queue, target)
			}
		}
	}
	return order
}

// satisfyBounds moves the task's dates forward so every incoming constraint
// is met, using the current (already shifted) dates of each source in the
// snapshot. When several incoming edges impose different bounds the latest
// one wins: the shift delta is the maximum positive violation across all
// edges, so a single forward shift satisfies every bound at once.
func satisfyBounds(snap *Snapshot, task *models.Task) (models.DateMutation, bool) {
	mut := models.DateMutation{
		TaskID:   task.ID,
		OldStart: copyDate(task.StartDate),
		OldDue:   copyDate(task.DueDate),
	}

	requiredStart, requiredDue := requiredBounds(snap, task.ID)

	// Shift both dates by the largest violation, preserving duration.
	var delta time.Duration
	if requiredStart != nil && task.StartDate != nil {
		if d := requiredStart.Sub(*task.StartDate); d > delta {
			delta = d
		}
	}
	if requiredDue != nil && task.DueDate != nil {
		if d := requiredDue.Sub(*task.DueDate); d > delta {
			delta = d
		}
	}
	if delta > 0 {
		shiftDate(&task.StartDate, delta)
		shiftDate(&task.DueDate, delta)
	}

	// A bound on an unset date assigns it directly; no dates are invented
	// beyond what the constraint demands.
	if task.StartDate == nil && requiredStart != nil {
		task.StartDate = copyDate(requiredStart)
	}
	if task.DueDate == nil && requiredDue != nil {
		task.DueDate = copyDate(requiredDue)
	}
	// Assignment to a previously unset date can invert the range; there was
	// no duration to preserve, so collapse to the later date.
	if task.StartDate != nil && task.DueDate != nil && task.StartDate.After(*task.DueDate) {
		task.DueDate = copyDate(task.StartDate)
	}

	if task.IsMilestone {
		flattenMilestone(task)
	}

	mut.NewStart = copyDate(task.StartDate)
	mut.NewDue = copyDate(task.DueDate)
	return mut, mut.Changed()
}

// requiredBounds computes the latest lower bound on the task's start and due
// dates over all incoming edges. Sources with the relevant date unset impose
// no bound.
func requiredBounds(snap *Snapshot, taskID string) (reqStart, reqDue *time.Time) {
	for _, edge := range snap.Incoming[taskID] {
		source := snap.Tasks[edge.SourceID]
		if source == nil {
			continue
		}
		switch edge.Type {
		case models.FinishToStart:
			reqStart = laterOf(reqStart, source.DueDate)
		case models.StartToStart:
			reqStart = laterOf(reqStart, source.StartDate)
		case models.FinishToFinish:
			reqDue = laterOf(reqDue, source.DueDate)
		case models.StartToFinish:
			reqDue = laterOf(reqDue, source.StartDate)
		}
	}
	return reqStart, reqDue
}

// flattenMilestone forces a milestone's dates to a single point, keeping the
// later of the two so no constraint is re-violated.
func flattenMilestone(task *models.Task) {
	switch {
	case task.StartDate == nil:
		task.StartDate = copyDate(task.DueDate)
	case task.DueDate == nil:
		task.DueDate = copyDate(task.StartDate)
	case task.DueDate.Before(*task.StartDate):
		task.DueDate = copyDate(task.StartDate)
	case task.StartDate.Before(*task.DueDate):
		task.StartDate = copyDate(task.DueDate)
	}
}

func laterOf(a, b *time.Time) *time.Time {
	if b == nil {
		return a
	}
	if a == nil || b.After(*a) {
		return b
	}
	return a
}

func shiftDate(d **time.Time, delta time.Duration) {
	if *d == nil {
		return
	}
	shifted := (*d).Add(delta)
	*d = &shifted
}

func copyDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
