package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"horror-tracker/core/logger"
	"horror-tracker/feature/orchestrator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runDryRun bool
	runTasks  []string
)

// runCmd performs a single pipeline run and prints its report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and print the report",
	Long: `Runs the pipeline once and prints the run report as JSON.

Exits with status 2 when any task failed or finished partially.

Examples:
  # Full run
  run

  # Preview the changes without writing
  run --dry-run

  # Scrape the theaters and report what they list, without writing
  run --task theater-listings

  # Refresh the theater listings (fetches them first)
  run --task theater-reconcile`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Roll back every write after planning it")
	runCmd.Flags().StringSliceVar(&runTasks, "task", nil,
		"Run only the named tasks ("+strings.Join(orchestrator.Tasks, ", ")+")")

	RootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	for _, t := range runTasks {
		if !validTask(t) {
			return fmt.Errorf("unknown task %q", t)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApplication(ctx, cfg, l, runDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.orch.RunOnce(ctx, orchestrator.RunOptions{Tasks: runTasks, DryRun: runDryRun})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if report.Failed() {
		l.Warn("Run finished with failures", zap.String("run_id", report.RunID))
		return &exitError{code: 2}
	}
	return nil
}

func validTask(name string) bool {
	for _, t := range orchestrator.Tasks {
		if t == name {
			return true
		}
	}
	return false
}
