package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	TasksCreated     int            `json:"tasks_created"`
	EdgesAdded       int            `json:"edges_added"`
	EdgesRemoved     int            `json:"edges_removed"`
	EdgesByType      map[string]int `json:"edges_by_type"`
	TimelineUpdates  int            `json:"timeline_updates"`
	Cascades         int            `json:"cascades"`
	TasksShifted     int            `json:"tasks_shifted"`
	MilestoneToggles int            `json:"milestone_toggles"`
	EventCount       int            `json:"event_count"`
	OldestEvent      *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent      *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log. An empty workspace
// aggregates across all workspaces.
type MetricsCalculator interface {
	Calculate(workspace string, since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads the workspace's events since the given time and aggregates
// them into metrics.
func (mc *metricsCalculator) Calculate(workspace string, since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since, Workspace: workspace})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		EdgesByType: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventTaskCreated:
			m.TasksCreated++
		case EventDependencyAdded:
			m.EdgesAdded++
			if depType, ok := event.Data["type"].(string); ok {
				m.EdgesByType[depType]++
			}
		case EventDependencyRemoved:
			m.EdgesRemoved++
		case EventTimelineUpdated:
			m.TimelineUpdates++
		case EventTimelineCascaded:
			m.Cascades++
			// JSON unmarshals numbers as float64.
			if shifted, ok := event.Data["shifted"].(float64); ok {
				m.TasksShifted += int(shifted)
			}
		case EventMilestoneToggled:
			m.MilestoneToggles++
		}
	}

	return m, nil
}
