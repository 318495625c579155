package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/spf13/viper"
)

// validPrefixPattern matches uppercase alphanumeric prefixes between 1 and 10 characters.
var validPrefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// validWorkspacePattern keeps workspace names filesystem-safe.
var validWorkspacePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// ConfigurationManager loads and validates configuration from the
// .cascadeconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	// basePath is the root directory where .cascadeconfig resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		DefaultWorkspace: "default",
		TaskIDPrefix:     "TASK",
		TaskIDPadWidth:   5,
		DepIDPrefix:      "DEP",
		DepIDPadWidth:    5,
		LockRetries:      20,
		LockRetryDelayMS: 50,
	}
}

// LoadGlobalConfig reads the .cascadeconfig file from the base path using
// Viper. If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".cascadeconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("workspace.default", cfg.DefaultWorkspace)
	v.SetDefault("task_id.prefix", cfg.TaskIDPrefix)
	v.SetDefault("task_id.pad_width", cfg.TaskIDPadWidth)
	v.SetDefault("dep_id.prefix", cfg.DepIDPrefix)
	v.SetDefault("dep_id.pad_width", cfg.DepIDPadWidth)
	v.SetDefault("lock.retries", cfg.LockRetries)
	v.SetDefault("lock.retry_delay_ms", cfg.LockRetryDelayMS)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .cascadeconfig: %w", err)
	}

	cfg.DefaultWorkspace = v.GetString("workspace.default")
	cfg.TaskIDPrefix = v.GetString("task_id.prefix")
	cfg.DepIDPrefix = v.GetString("dep_id.prefix")
	cfg.LockRetries = v.GetInt("lock.retries")
	cfg.LockRetryDelayMS = v.GetInt("lock.retry_delay_ms")

	// Use IsSet to distinguish "not set" (use default) from "explicitly 0".
	if v.IsSet("task_id.pad_width") {
		cfg.TaskIDPadWidth = v.GetInt("task_id.pad_width")
	}
	if v.IsSet("dep_id.pad_width") {
		cfg.DepIDPadWidth = v.GetInt("dep_id.pad_width")
	}

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.DefaultWorkspace == "" {
		errs = append(errs, "workspace.default must not be empty")
	} else if !validWorkspacePattern.MatchString(cfg.DefaultWorkspace) {
		errs = append(errs, fmt.Sprintf(
			"workspace.default %q is invalid, must match [a-z0-9][a-z0-9._-]{0,63}",
			cfg.DefaultWorkspace,
		))
	}

	if cfg.TaskIDPrefix == "" || !validPrefixPattern.MatchString(cfg.TaskIDPrefix) {
		errs = append(errs, fmt.Sprintf(
			"task_id.prefix %q is invalid, must match [A-Z0-9]{1,10}", cfg.TaskIDPrefix))
	}
	if cfg.DepIDPrefix == "" || !validPrefixPattern.MatchString(cfg.DepIDPrefix) {
		errs = append(errs, fmt.Sprintf(
			"dep_id.prefix %q is invalid, must match [A-Z0-9]{1,10}", cfg.DepIDPrefix))
	}

	if cfg.TaskIDPadWidth < 0 || cfg.TaskIDPadWidth > 10 {
		errs = append(errs, fmt.Sprintf(
			"task_id.pad_width %d is invalid, must be between 0 and 10", cfg.TaskIDPadWidth))
	}
	if cfg.DepIDPadWidth < 0 || cfg.DepIDPadWidth > 10 {
		errs = append(errs, fmt.Sprintf(
			"dep_id.pad_width %d is invalid, must be between 0 and 10", cfg.DepIDPadWidth))
	}

	if cfg.LockRetries < 0 {
		errs = append(errs, fmt.Sprintf("lock.retries must be non-negative, got %d", cfg.LockRetries))
	}
	if cfg.LockRetryDelayMS < 0 {
		errs = append(errs, fmt.Sprintf("lock.retry_delay_ms must be non-negative, got %d", cfg.LockRetryDelayMS))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
