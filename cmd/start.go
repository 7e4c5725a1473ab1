package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"horror-tracker/core/loader"
	"horror-tracker/core/logger"
	"horror-tracker/core/middleware/rayid"
	"horror-tracker/feature/status"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the weekly pipeline and the status server",
	Long: `Runs the pipeline immediately and then on the configured interval,
retrying sooner after a failed run. When the server is enabled the latest
run report and archived snapshots are served over HTTP.`,
	RunE: start,
}

func start(cmd *cobra.Command, args []string) error {
	// 1. Load Configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 2. Initialize Logger
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Wire the pipeline
	a, err := newApplication(ctx, cfg, logg, false)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer a.Close()

	// 4. Status server
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Debug("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	mgr := loader.NewManager(logg)
	mgr.Register(status.NewFeature(cfg.Server, a.orch, a.archiver, logg.Named("status")))
	if err := mgr.LoadAll(app); err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}

	if cfg.Server.Enabled {
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Error("Server stopped", zap.Error(err))
				stop()
			}
		}()
	}

	// 5. Schedule loop until a signal arrives
	if err := a.orch.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("Scheduler stopped", zap.Error(err))
	}

	logg.Info("Shutting down...")
	if cfg.Server.Enabled {
		_ = app.Shutdown()
	}
	return nil
}

func init() {
	RootCmd.AddCommand(startCmd)
}
