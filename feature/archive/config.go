package archive

// Config controls snapshot archival.
type Config struct {
	// Enabled turns archival on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix" default:"runs"`
	// KeepRuns is how many runs survive a prune; 0 keeps everything.
	KeepRuns int `mapstructure:"keep_runs" default:"12"`
}
