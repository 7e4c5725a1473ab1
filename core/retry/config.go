package retry

import "time"

// Config holds configuration for the retry policy applied to source fetches.
type Config struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int `mapstructure:"attempts" default:"3"`
	// Base is the first retry delay and the lower bound of every delay.
	Base time.Duration `mapstructure:"base" default:"4s"`
	// Multiplier scales the exponential term.
	Multiplier float64 `mapstructure:"multiplier" default:"1"`
	// Max caps every delay.
	Max time.Duration `mapstructure:"max" default:"10s"`
}

// Policy builds a Policy from the configuration.
func (c Config) Policy() Policy {
	return Policy{
		Attempts:   c.Attempts,
		Base:       c.Base,
		Multiplier: c.Multiplier,
		Max:        c.Max,
	}
}
