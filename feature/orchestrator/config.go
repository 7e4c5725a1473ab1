package orchestrator

import "time"

// Config holds the schedule and concurrency of the update pipeline.
type Config struct {
	// Interval is the sleep between two runs.
	Interval time.Duration `mapstructure:"interval" default:"168h"`
	// RecoveryInterval is the sleep after a run that failed outright.
	RecoveryInterval time.Duration `mapstructure:"recovery_interval" default:"1h"`
	// MaxConcurrentTasks caps the independent fetch tasks running at once.
	MaxConcurrentTasks int `mapstructure:"max_concurrent_tasks" default:"3"`
	// MaxConcurrentChains caps theater chains scraped at once.
	MaxConcurrentChains int `mapstructure:"max_concurrent_chains" default:"3"`
}
