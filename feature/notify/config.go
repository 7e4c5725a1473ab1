package notify

import "time"

// Config holds the NATS connection used to announce runs.
type Config struct {
	// URL of the NATS server. Empty disables publishing.
	URL string `mapstructure:"url" default:""`
	// Stream is the JetStream stream that stores run events.
	Stream string `mapstructure:"stream" default:"HORROR"`
	// Subject receives one event per finished run.
	Subject string `mapstructure:"subject" default:"horror.runs.completed"`
	// Timeout bounds connecting and each publish.
	Timeout time.Duration `mapstructure:"timeout" default:"5s"`
}
