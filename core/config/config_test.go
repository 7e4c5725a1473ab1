package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 168*time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, time.Hour, cfg.Scheduler.RecoveryInterval)
	assert.Equal(t, 3, cfg.Scheduler.MaxConcurrentTasks)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 4*time.Second, cfg.Retry.Base)
	assert.Equal(t, 5, cfg.Database.PoolSize)
	assert.Equal(t, 5, cfg.TMDB.MaxConcurrentRequests)
	assert.Equal(t, 27, cfg.TMDB.HorrorGenreID)
	assert.Equal(t, "8:1,337:2,356:3,96:4,3:5", cfg.TMDB.ProviderMap)
	assert.Equal(t, "p.tit", cfg.Megabox.TitleSelector)
	assert.Equal(t, 3, cfg.Unogs.ExpiringButtonIndex)
	assert.Equal(t, 2*time.Minute, cfg.Browser.MaxRevealDuration)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "horror.runs.completed", cfg.NATS.Subject)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("TMDB_TOKEN", "token")
	t.Setenv("SCHEDULER_INTERVAL", "24h")
	t.Setenv("CGV_NOW_SHOWING_URL", "http://cinema.test/now")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.TMDB.Token)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, "http://cinema.test/now", cfg.CGV.NowShowingURL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ARCHIVE_KEEP_RUNS=4\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("ARCHIVE_KEEP_RUNS") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Archive.KeepRuns)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tmdb.token is required")

	cfg.TMDB.Token = "token"
	assert.NoError(t, cfg.Validate())

	cfg.TMDB.ProviderMap = "8=1"
	cfg.Lotte.UpcomingURL = ""
	cfg.Scheduler.MaxConcurrentTasks = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tmdb.provider_map")
	assert.Contains(t, err.Error(), "lotte.upcoming_url is required")
	assert.Contains(t, err.Error(), "scheduler.max_concurrent_tasks must be positive")
}
