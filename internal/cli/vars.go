package cli

import (
	"github.com/cascadehq/cascade/internal/core"
	"github.com/cascadehq/cascade/internal/observability"
)

// Service instances shared by the commands, set during app initialization.
var (
	GanttMgr    core.GanttManager
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator

	// BasePath is the data root (typically ~/.cascade).
	BasePath string
	// DefaultWorkspace is used when --workspace is not passed.
	DefaultWorkspace = "default"
)
