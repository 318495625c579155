// Package core contains the business logic of the cascade engine: the
// dependency graph snapshot, cycle detection, timeline validation, the
// cascade scheduler, and the coordinating Gantt manager.
package core

import (
	"sort"

	"github.com/cascadehq/cascade/pkg/models"
)

// Snapshot is an in-memory view of one workspace's tasks and dependency
// edges, loaded once per operation. All traversal runs against the snapshot
// and mutations are batch-persisted afterwards, so the stores are never
// queried edge by edge mid-cascade.
type Snapshot struct {
	Tasks    map[string]*models.Task
	Outgoing map[string][]models.DependencyEdge
	Incoming map[string][]models.DependencyEdge
}

// BuildSnapshot indexes the given tasks and edges into adjacency lists.
// Tasks are cloned so snapshot mutations never leak into the caller's data.
// Edge order within each list is stable (by edge ID) to keep traversal and
// mutation output deterministic.
func BuildSnapshot(tasks []*models.Task, edges []models.DependencyEdge) *Snapshot {
	snap := &Snapshot{
		Tasks:    make(map[string]*models.Task, len(tasks)),
		Outgoing: make(map[string][]models.DependencyEdge),
		Incoming: make(map[string][]models.DependencyEdge),
	}
	for _, t := range tasks {
		snap.Tasks[t.ID] = t.Clone()
	}
	for _, e := range edges {
		snap.Outgoing[e.SourceID] = append(snap.Outgoing[e.SourceID], e)
		snap.Incoming[e.TargetID] = append(snap.Incoming[e.TargetID], e)
	}
	for id := range snap.Outgoing {
		sortEdges(snap.Outgoing[id])
	}
	for id := range snap.Incoming {
		sortEdges(snap.Incoming[id])
	}
	return snap
}

func sortEdges(edges []models.DependencyEdge) {
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].ID < edges[j].ID
	})
}

// Task returns the snapshot's copy of the given task, or nil if the task is
// not part of the workspace.
func (s *Snapshot) Task(id string) *models.Task {
	return s.Tasks[id]
}

// Dependents returns the edges where taskID is the source, i.e. the tasks
// constrained by it.
func (s *Snapshot) Dependents(taskID string) []models.DependencyEdge {
	return s.Outgoing[taskID]
}

// Blockers returns the edges where taskID is the target, i.e. the tasks that
// must be satisfied first.
func (s *Snapshot) Blockers(taskID string) []models.DependencyEdge {
	return s.Incoming[taskID]
}
