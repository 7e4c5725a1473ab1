package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"horror-tracker/core/database"
	"horror-tracker/core/logger"
	"horror-tracker/core/retry"
	"horror-tracker/core/server"
	"horror-tracker/core/storage"
	"horror-tracker/feature/archive"
	"horror-tracker/feature/notify"
	"horror-tracker/feature/orchestrator"
	"horror-tracker/feature/scraper"
	"horror-tracker/feature/tmdb"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the status HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Archive controls run snapshots kept in Storage.
	Archive archive.Config `mapstructure:"archive"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// NATS holds configuration for run events.
	NATS notify.Config `mapstructure:"nats"`
	// TMDB holds configuration for the metadata API.
	TMDB tmdb.Config `mapstructure:"tmdb"`
	// Browser holds configuration for the headless browser.
	Browser scraper.BrowserConfig `mapstructure:"browser"`
	// CGV, Megabox and Lotte hold the theater chains' listing pages.
	CGV     scraper.CGVConfig     `mapstructure:"cgv"`
	Megabox scraper.MegaboxConfig `mapstructure:"megabox"`
	Lotte   scraper.LotteConfig   `mapstructure:"lotte"`
	// Unogs holds the streaming catalog's expiring page.
	Unogs scraper.UnogsConfig `mapstructure:"unogs"`
	// Scheduler holds the run schedule and concurrency caps.
	Scheduler orchestrator.Config `mapstructure:"scheduler"`
	// Retry is the policy applied to every source fetch.
	Retry retry.Config `mapstructure:"retry"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. TMDB_TOKEN -> tmdb.token)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.TMDB.Token == "" {
		errs = append(errs, errors.New("tmdb.token is required"))
	}
	if _, err := tmdb.ParseProviderMap(c.TMDB.ProviderMap); err != nil {
		errs = append(errs, fmt.Errorf("tmdb.provider_map: %w", err))
	}

	urls := map[string]string{
		"cgv.now_showing_url":     c.CGV.NowShowingURL,
		"cgv.upcoming_url":        c.CGV.UpcomingURL,
		"megabox.now_showing_url": c.Megabox.NowShowingURL,
		"megabox.upcoming_url":    c.Megabox.UpcomingURL,
		"lotte.now_showing_url":   c.Lotte.NowShowingURL,
		"lotte.upcoming_url":      c.Lotte.UpcomingURL,
		"unogs.url":               c.Unogs.URL,
		"tmdb.theatrical_url":     c.TMDB.TheatricalURL,
		"tmdb.discover_url":       c.TMDB.DiscoverURL,
	}
	for _, key := range sortedKeys(urls) {
		if strings.TrimSpace(urls[key]) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	caps := map[string]int{
		"scheduler.max_concurrent_tasks":  c.Scheduler.MaxConcurrentTasks,
		"scheduler.max_concurrent_chains": c.Scheduler.MaxConcurrentChains,
		"tmdb.max_concurrent_requests":    c.TMDB.MaxConcurrentRequests,
		"database.pool_size":              c.Database.PoolSize,
		"retry.attempts":                  c.Retry.Attempts,
	}
	for _, key := range sortedKeys(caps) {
		if caps[key] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", key, caps[key]))
		}
	}

	if c.Scheduler.Interval <= 0 || c.Scheduler.RecoveryInterval <= 0 {
		errs = append(errs, errors.New("scheduler intervals must be positive"))
	}
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
