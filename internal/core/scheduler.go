package core

import (
	"fmt"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
)

// TaskStore is the subset of storage.TaskStore the manager needs. Defining
// it here keeps core independent of the storage package.
type TaskStore interface {
	AddTask(task models.Task) error
	UpdateTask(task models.Task) error
	GetTask(taskID string) (*models.Task, error)
	GetAllTasks() ([]models.Task, error)
	Load() error
	Save() error
}

// DependencyStore is the subset of storage.DependencyStore the manager needs.
type DependencyStore interface {
	AddEdge(edge models.DependencyEdge) error
	RemoveEdge(edgeID string) error
	GetEdge(edgeID string) (*models.DependencyEdge, error)
	EdgeByPair(sourceID, targetID string) (*models.DependencyEdge, bool)
	Outgoing(taskID string) []models.DependencyEdge
	Incoming(taskID string) []models.DependencyEdge
	AllEdges() []models.DependencyEdge
	Load() error
	Save() error
}

// StoreOpener builds the stores for a workspace. The manager opens stores
// per operation, after the workspace lock is held, so no operation ever
// works from a stale view.
type StoreOpener interface {
	OpenTaskStore(workspace string) TaskStore
	OpenDependencyStore(workspace string) DependencyStore
}

// EventLogger is the subset of observability.EventLog the manager needs.
// Events are scoped to the workspace whose graph was mutated. A nil
// EventLogger disables event recording.
type EventLogger interface {
	LogEvent(workspace, eventType, message string, data map[string]any)
}

// GanttManager is the engine's coordinating service: dependency graph
// mutations with cycle rejection, timeline updates with cascade propagation,
// and milestone toggling. Every operation holds the per-workspace exclusive
// lock for its full duration.
type GanttManager interface {
	CreateTask(workspace, title string, start, due *time.Time, milestone bool) (*models.Task, error)
	GetTask(workspace, taskID string) (*models.Task, error)
	ListTasks(workspace string) ([]models.Task, error)

	AddDependency(workspace, sourceID, targetID string, depType models.DependencyType) (*models.DependencyEdge, error)
	RemoveDependency(workspace, edgeID string) error
	Blockers(workspace, taskID string) ([]models.DependencyEdge, error)
	Dependents(workspace, taskID string) ([]models.DependencyEdge, error)

	UpdateTimeline(workspace, taskID string, start, due *time.Time) ([]models.DateMutation, error)
	ToggleMilestone(workspace, taskID string, enable bool) (*models.Task, error)
}

// ganttManager implements GanttManager by coordinating the stores, the
// workspace lock, the cycle detector, and the cascade scheduler.
type ganttManager struct {
	stores  StoreOpener
	locker  WorkspaceLocker
	taskIDs IDGenerator
	depIDs  IDGenerator
	events  EventLogger
}

// NewGanttManager creates a GanttManager with all dependencies injected.
// events may be nil if observability is disabled.
func NewGanttManager(stores StoreOpener, locker WorkspaceLocker, taskIDs, depIDs IDGenerator, events EventLogger) GanttManager {
	return &ganttManager{
		stores:  stores,
		locker:  locker,
		taskIDs: taskIDs,
		depIDs:  depIDs,
		events:  events,
	}
}

func (m *ganttManager) logEvent(workspace, eventType, message string, data map[string]any) {
	if m.events != nil {
		m.events.LogEvent(workspace, eventType, message, data)
	}
}

// CreateTask adds a new task to the workspace after validating its dates.
func (m *ganttManager) CreateTask(workspace, title string, start, due *time.Time, milestone bool) (*models.Task, error) {
	release, err := m.locker.Acquire(workspace)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	defer release()

	id, err := m.taskIDs.NextID(workspace)
	if err != nil {
		return nil, fmt.Errorf("creating task: generating ID: %w", err)
	}

	now := time.Now().UTC()
	task := models.Task{
		ID:          id,
		Workspace:   workspace,
		Title:       title,
		StartDate:   start,
		DueDate:     due,
		IsMilestone: milestone,
		Created:     now,
		Updated:     now,
	}
	if milestone {
		SetMilestone(&task, true)
	}
	if err := ValidateTimeline(&task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	tasks := m.stores.OpenTaskStore(workspace)
	if err := tasks.Load(); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	if err := tasks.AddTask(task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	if err := tasks.Save(); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	m.logEvent(workspace, "task.created", "task created", map[string]any{
		"task_id": task.ID, "milestone": task.IsMilestone,
	})
	return &task, nil
}

// GetTask returns a single task by ID.
func (m *ganttManager) GetTask(workspace, taskID string) (*models.Task, error) {
	release, err := m.locker.Acquire(workspace)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", taskID, err)
	}
	defer release()

	tasks := m.stores.OpenTaskStore(workspace)
	if err := tasks.Load(); err != nil {
		return nil, fmt.Errorf("getting task %s: %w", taskID, err)
	}
	task, err := tasks.GetTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", taskID, ErrTaskNotFound)
	}
	return task, nil
}

// ListTasks returns all tasks in the workspace ordered by ID.
func (m *ganttManager) ListTasks(workspace string) ([]models.Task, error) {
	release, err := m.locker.Acquire(workspace)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer release()

	tasks := m.stores.OpenTaskStore(workspace)
	if err := tasks.Load(); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks.GetAllTasks()
}

// AddDependency validates and persists a new edge. Failure order: invalid
// type, self-dependency, missing endpoints, duplicate pair, cycle. Nothing
// is mutated unless every check passes.
func (m *ganttManager) AddDependency(workspace, sourceID, targetID string, depType models.DependencyType) (*models.DependencyEdge, error) {
	if !depType.IsValid() {
		return nil, fmt.Errorf("adding dependency: type %q: %w", depType, ErrInvalidDependencyType)
	}
	if sourceID == targetID {
		return nil, fmt.Errorf("adding dependency %s -> %s: %w", sourceID, targetID, ErrSelfDependency)
	}

	release, err := m.locker.Acquire(workspace)
	if err != nil {
		return nil, fmt.Errorf("adding dependency: %w", err)
	}
	defer release()

	tasks, deps, err := m.openStores(workspace)
	if err != nil {
		return nil, fmt.Errorf("adding dependency: %w", err)
	}

	for _, id := range []string{sourceID, targetID} {
		if _, err := tasks.GetTask(id); err != nil {
			return nil, fmt.Errorf("adding dependency: task %s: %w", id, ErrTaskNotFound)
		}
	}
	if existing, dup := deps.EdgeByPair(sourceID, targetID); dup {
		return nil, fmt.Errorf("adding dependency: pair %s -> %s already linked by %s: %w",
			sourceID, targetID, existing.ID, ErrDuplicateDependency)
	}

	snap, err := m.snapshot(tasks, deps)
	if err != nil {
		return nil, fmt.Errorf("adding dependency: %w", err)
	}
	if cyclic, path := WouldCreateCycle(snap, sourceID, targetID); cyclic {
		return nil, fmt.Errorf("adding dependency %s -> %s: %w",
			sourceID, targetID, &CircularDependencyError{Cycle: path})
	}

	id, err := m.depIDs.NextID(workspace)
	if err != nil {
		return nil, fmt.Errorf("adding dependency: generating ID: %w", err)
	}
	edge := models.DependencyEdge{
		ID:        id,
		Workspace: workspace,
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      depType,
		Created:   time.Now().UTC(),
	}
	if err := deps.AddEdge(edge); err != nil {
		return nil, fmt.Errorf("adding dependency: %w", err)
	}
	if err := deps.Save(); err != nil {
		return nil, fmt.Errorf("adding dependency: %w", err)
	}

	m.logEvent(workspace, "dependency.added", "dependency edge added", map[string]any{
		"edge_id": edge.ID,
		"source":  sourceID, "target": targetID, "type": string(depType),
	})
	return &edge, nil
}

// RemoveDependency deletes an edge by ID.
func (m *ganttManager) RemoveDependency(workspace, edgeID string) error {
	release, err := m.locker.Acquire(workspace)
	if err != nil {
		return fmt.Errorf("removing dependency %s: %w", edgeID, err)
	}
	defer release()

	deps := m.stores.OpenDependencyStore(workspace)
	if err := deps.Load(); err != nil {
		return fmt.Errorf("removing dependency %s: %w", edgeID, err)
	}
	if _, err := deps.GetEdge(edgeID); err != nil {
		return fmt.Errorf("removing dependency %s: %w", edgeID, ErrDependencyNotFound)
	}
	if err := deps.RemoveEdge(edgeID); err != nil {
		return fmt.Errorf("removing dependency %s: %w", edgeID, err)
	}
	if err := deps.Save(); err != nil {
		return fmt.Errorf("removing dependency %s: %w", edgeID, err)
	}

	m.logEvent(workspace, "dependency.removed", "dependency edge removed", map[string]any{
		"edge_id": edgeID,
	})
	return nil
}

// Blockers returns the edges constraining taskID (incoming edges).
func (m *ganttManager) Blockers(workspace, taskID string) ([]models.DependencyEdge, error) {
	return m.edgesOf(workspace, taskID, "listing blockers", func(deps DependencyStore) []models.DependencyEdge {
		return deps.Incoming(taskID)
	})
}

// Dependents returns the edges constrained by taskID (outgoing edges).
func (m *ganttManager) Dependents(workspace, taskID string) ([]models.DependencyEdge, error) {
	return m.edgesOf(workspace, taskID, "listing dependents", func(deps DependencyStore) []models.DependencyEdge {
		return deps.Outgoing(taskID)
	})
}

func (m *ganttManager) edgesOf(workspace, taskID, op string, pick func(DependencyStore) []models.DependencyEdge) ([]models.DependencyEdge, error) {
	release, err := m.locker.Acquire(workspace)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", op, taskID, err)
	}
	defer release()

	tasks, deps, err := m.openStores(workspace)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", op, taskID, err)
	}
	if _, err := tasks.GetTask(taskID); err != nil {
		return nil, fmt.Errorf("%s for %s: %w", op, taskID, ErrTaskNotFound)
	}
	return pick(deps), nil
}

// UpdateTimeline applies an external date change to the task, validates it,
// cascades the change through the dependency graph, and batch-persists every
// mutation. The returned list starts with the root task's own change,
// followed by the cascaded shifts in traversal order.
func (m *ganttManager) UpdateTimeline(workspace, taskID string, start, due *time.Time) ([]models.DateMutation, error) {
	release, err := m.locker.Acquire(workspace)
	if err != nil {
		return nil, fmt.Errorf("updating timeline for %s: %w", taskID, err)
	}
	defer release()

	tasks, deps, err := m.openStores(workspace)
	if err != nil {
		return nil, fmt.Errorf("updating timeline for %s: %w", taskID, err)
	}

	current, err := tasks.GetTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("updating timeline for %s: %w", taskID, ErrTaskNotFound)
	}

	updated := current.Clone()
	if start != nil {
		updated.StartDate = copyDate(start)
	}
	if due != nil {
		updated.DueDate = copyDate(due)
	}
	if err := ValidateTimeline(updated); err != nil {
		return nil, fmt.Errorf("updating timeline for %s: %w", taskID, err)
	}

	rootMut := models.DateMutation{
		TaskID:   taskID,
		OldStart: copyDate(current.StartDate),
		OldDue:   copyDate(current.DueDate),
		NewStart: copyDate(updated.StartDate),
		NewDue:   copyDate(updated.DueDate),
	}
	if !rootMut.Changed() {
		return nil, nil
	}

	all, err := tasks.GetAllTasks()
	if err != nil {
		return nil, fmt.Errorf("updating timeline for %s: %w", taskID, err)
	}
	taskPtrs := make([]*models.Task, 0, len(all))
	for i := range all {
		taskPtrs = append(taskPtrs, &all[i])
	}
	snap := BuildSnapshot(taskPtrs, deps.AllEdges())
	snap.Tasks[taskID] = updated

	cascaded := Cascade(snap, taskID)

	// Re-check the invariants on every task the cascade touched before
	// anything is persisted.
	for _, mut := range cascaded {
		if err := ValidateTimeline(snap.Tasks[mut.TaskID]); err != nil {
			return nil, fmt.Errorf("updating timeline for %s: cascade produced invalid dates: %w", taskID, err)
		}
	}

	mutations := append([]models.DateMutation{rootMut}, cascaded...)

	if err := m.persistMutations(tasks, snap, mutations); err != nil {
		return nil, err
	}

	m.logEvent(workspace, "timeline.updated", "task timeline updated", map[string]any{
		"task_id": taskID,
	})
	if len(cascaded) > 0 {
		m.logEvent(workspace, "timeline.cascaded", "timeline change cascaded to dependents", map[string]any{
			"task_id": taskID, "shifted": len(cascaded),
		})
	}
	return mutations, nil
}

// persistMutations writes every mutated task back to the store and saves
// once. A failure is reported as *CascadeAbortedError naming which mutations
// committed and which did not.
func (m *ganttManager) persistMutations(tasks TaskStore, snap *Snapshot, mutations []models.DateMutation) error {
	now := time.Now().UTC()
	for i, mut := range mutations {
		task := snap.Tasks[mut.TaskID]
		task.Updated = now
		if err := tasks.UpdateTask(*task); err != nil {
			return &CascadeAbortedError{
				Applied: nil,
				Pending: mutations[i:],
				Err:     err,
			}
		}
	}
	if err := tasks.Save(); err != nil {
		// The store buffers updates in memory; a failed save commits nothing.
		return &CascadeAbortedError{
			Applied: nil,
			Pending: mutations,
			Err:     err,
		}
	}
	return nil
}

// ToggleMilestone enables or disables the milestone flag, collapsing the
// date range to a point on enable, then re-validates and persists.
func (m *ganttManager) ToggleMilestone(workspace, taskID string, enable bool) (*models.Task, error) {
	release, err := m.locker.Acquire(workspace)
	if err != nil {
		return nil, fmt.Errorf("toggling milestone for %s: %w", taskID, err)
	}
	defer release()

	tasks := m.stores.OpenTaskStore(workspace)
	if err := tasks.Load(); err != nil {
		return nil, fmt.Errorf("toggling milestone for %s: %w", taskID, err)
	}
	task, err := tasks.GetTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("toggling milestone for %s: %w", taskID, ErrTaskNotFound)
	}

	SetMilestone(task, enable)
	task.Updated = time.Now().UTC()
	if err := ValidateTimeline(task); err != nil {
		return nil, fmt.Errorf("toggling milestone for %s: %w", taskID, err)
	}

	if err := tasks.UpdateTask(*task); err != nil {
		return nil, fmt.Errorf("toggling milestone for %s: %w", taskID, err)
	}
	if err := tasks.Save(); err != nil {
		return nil, fmt.Errorf("toggling milestone for %s: %w", taskID, err)
	}

	m.logEvent(workspace, "milestone.toggled", "milestone flag toggled", map[string]any{
		"task_id": taskID, "enabled": enable,
	})
	return task, nil
}

func (m *ganttManager) openStores(workspace string) (TaskStore, DependencyStore, error) {
	tasks := m.stores.OpenTaskStore(workspace)
	if err := tasks.Load(); err != nil {
		return nil, nil, err
	}
	deps := m.stores.OpenDependencyStore(workspace)
	if err := deps.Load(); err != nil {
		return nil, nil, err
	}
	return tasks, deps, nil
}

// snapshot builds the in-memory graph view for one operation and rejects
// corrupted data that contains a cycle.
func (m *ganttManager) snapshot(tasks TaskStore, deps DependencyStore) (*Snapshot, error) {
	all, err := tasks.GetAllTasks()
	if err != nil {
		return nil, err
	}
	ptrs := make([]*models.Task, 0, len(all))
	for i := range all {
		ptrs = append(ptrs, &all[i])
	}
	snap := BuildSnapshot(ptrs, deps.AllEdges())
	if cycle := ValidateAcyclic(snap); cycle != nil {
		return nil, fmt.Errorf("persisted graph contains a cycle: %w", &CircularDependencyError{Cycle: cycle})
	}
	return snap, nil
}
