// Package internal provides the App struct that wires all components of the
// cascade engine together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cascadehq/cascade/internal/cli"
	"github.com/cascadehq/cascade/internal/core"
	"github.com/cascadehq/cascade/internal/observability"
	"github.com/cascadehq/cascade/internal/storage"
	"github.com/cascadehq/cascade/pkg/models"
)

// App holds all service dependencies for the cascade engine.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Core services
	GanttMgr core.GanttManager
	Locker   core.WorkspaceLocker
	TaskIDs  core.IDGenerator
	DepIDs   core.IDGenerator

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// storeOpener builds workspace-scoped stores on demand, after the workspace
// lock is already held by the manager.
type storeOpener struct {
	basePath string
}

func (o storeOpener) OpenTaskStore(workspace string) core.TaskStore {
	return storage.NewTaskStore(o.basePath, workspace)
}

func (o storeOpener) OpenDependencyStore(workspace string) core.DependencyStore {
	return storage.NewDependencyStore(o.basePath, workspace)
}

// eventLogAdapter bridges observability.EventLog to the core.EventLogger
// interface without core importing the observability package.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(workspace, eventType, message string, data map[string]any) {
	_ = a.log.Write(observability.Event{
		Time:      time.Now().UTC(),
		Level:     "INFO",
		Type:      eventType,
		Workspace: workspace,
		Message:   message,
		Data:      data,
	})
}

// NewApp creates and wires all components of the cascade engine. basePath is
// the root directory where all data is stored (typically ~/.cascade or the
// current directory containing .cascadeconfig).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".cascade_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	var events core.EventLogger
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		events = &eventLogAdapter{log: app.EventLog}
	}

	// --- Core services ---
	app.Locker = core.NewWorkspaceLocker(
		basePath,
		cfg.LockRetries,
		time.Duration(cfg.LockRetryDelayMS)*time.Millisecond,
	)
	app.TaskIDs = core.NewIDGenerator(basePath, cfg.TaskIDPrefix, cfg.TaskIDPadWidth)
	app.DepIDs = core.NewIDGenerator(basePath, cfg.DepIDPrefix, cfg.DepIDPadWidth)

	app.GanttMgr = core.NewGanttManager(
		storeOpener{basePath: basePath},
		app.Locker,
		app.TaskIDs,
		app.DepIDs,
		events,
	)

	// --- CLI layer ---
	cli.BasePath = basePath
	cli.DefaultWorkspace = cfg.DefaultWorkspace
	cli.GanttMgr = app.GanttMgr
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// ResolveBasePath determines the data root: the CASCADE_HOME environment
// variable wins, then a .cascadeconfig in the current directory, then
// ~/.cascade.
func ResolveBasePath() string {
	if env := os.Getenv("CASCADE_HOME"); env != "" {
		return env
	}
	if cwd, err := os.Getwd(); err == nil {
		if _, err := os.Stat(filepath.Join(cwd, ".cascadeconfig")); err == nil {
			return cwd
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".cascade")
}
