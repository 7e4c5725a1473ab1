package cmd

import (
	"fmt"
	"os"

	"horror-tracker/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "horror-tracker",
	Short: "Horror movie tracker",
	Long: `Horror Tracker collects horror titles from theater chains, the TMDB API
and a streaming catalog, and reconciles them into the database once a week.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a process exit code without an additional log line.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		if ee, ok := err.(*exitError); ok {
			os.Exit(ee.code)
		}

		// Console format with ISO8601 timestamps reads better on a terminal
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
