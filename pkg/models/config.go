package models

// GlobalConfig holds settings read from the .cascadeconfig file.
type GlobalConfig struct {
	// DefaultWorkspace is used when a command does not pass --workspace.
	DefaultWorkspace string `yaml:"default_workspace"`

	// TaskIDPrefix and TaskIDPadWidth control generated task identifiers
	// (e.g. TASK-00042).
	TaskIDPrefix   string `yaml:"task_id_prefix"`
	TaskIDPadWidth int    `yaml:"task_id_pad_width"`

	// DepIDPrefix and DepIDPadWidth control generated dependency identifiers
	// (e.g. DEP-00007).
	DepIDPrefix   string `yaml:"dep_id_prefix"`
	DepIDPadWidth int    `yaml:"dep_id_pad_width"`

	// LockRetries and LockRetryDelayMS bound how long an operation waits for
	// the per-workspace lock before reporting the workspace as busy.
	LockRetries      int `yaml:"lock_retries"`
	LockRetryDelayMS int `yaml:"lock_retry_delay_ms"`
}
