package app

import "fmt"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// WorkspacePath is the workspace file or directory to load.
	WorkspacePath string
	// Phases is the requested phase set, in request order.
	Phases []string
	// Projects narrows the in-scope project subset. Empty means every
	// workspace project.
	Projects []string
	// Changed lists the projects with possibly-changed state. Empty means
	// every selected project is treated as possibly changed.
	Changed []string
	// Workers is the executor worker-pool size.
	Workers int
	// LogFormat is "text" or "json".
	LogFormat string
	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string
	// PlanOnly stops after planning and reports each operation's disposition.
	PlanOnly bool
}

// NewConfig validates a proposed configuration and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkspacePath == "" {
		return nil, fmt.Errorf("workspace path must not be empty")
	}
	if len(cfg.Phases) == 0 {
		return nil, fmt.Errorf("at least one phase must be requested")
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	return &cfg, nil
}
