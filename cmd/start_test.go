package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_ReturnsConfigError(t *testing.T) {
	t.Setenv("TMDB_TOKEN", "")

	err := start(startCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tmdb.token is required")
}

func TestRun_RejectsUnknownTask(t *testing.T) {
	runTasks = []string{"theater-listings", "box-office"}
	t.Cleanup(func() { runTasks = nil })

	err := runOnce(runCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown task "box-office"`)
}
