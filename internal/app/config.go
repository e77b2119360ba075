package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPath string // .hcl file or directory of .hcl files

	// Project limits the run to a single named project. Empty runs all
	// projects declared in the manifests.
	Project string

	// Targets are the task identities requested on the command line.
	// Empty falls back to each project's default targets.
	Targets []string

	LogFormat   string
	LogLevel    string
	WorkerCount int
	Serial      bool
	DryRun      bool
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 0 {
		return nil, errors.New("WorkerCount cannot be negative")
	}

	return &cfg, nil
}
