package storage

import "time"

// Config holds configuration for the object store that keeps run snapshots.
type Config struct {
	// Endpoint is host:port of the S3-compatible service. A scheme prefix is tolerated.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket receives the snapshots.
	Bucket string `mapstructure:"bucket" default:"horror-snapshots"`
	Region string `mapstructure:"region" default:""`
	// Timeout bounds dialing, TLS handshakes and waiting for response headers.
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
}
