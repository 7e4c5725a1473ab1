package server

// Config holds configuration for the status HTTP server.
type Config struct {
	// Enabled starts the status server alongside the scheduler.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey, when set, is required in the X-API-Key header.
	ApiKey string `mapstructure:"api_key" default:""`
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}
