package database

import "time"

// Config holds configuration for the database connection.
type Config struct {
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"5432"`
	// User is the database user.
	User string `mapstructure:"user" default:"postgres"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name.
	Name string `mapstructure:"name" default:"horror"`
	// Driver is the database driver (postgres, sqlite).
	Driver string `mapstructure:"driver" default:"postgres"`
	// SSLMode is passed to postgres as sslmode.
	SSLMode string `mapstructure:"ssl_mode" default:"disable"`
	// PoolSize caps open connections; every mutation acquires one from this pool.
	PoolSize int `mapstructure:"pool_size" default:"5"`
	// ConnMaxLifetime recycles connections older than this.
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" default:"1h"`
	// TimeoutSeconds bounds connection setup and the initial ping.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)
