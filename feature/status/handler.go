package status

import (
	"context"
	"errors"

	"horror-tracker/core/logger"
	"horror-tracker/core/middleware/auth"
	"horror-tracker/core/storage"
	"horror-tracker/feature/archive"
	"horror-tracker/feature/orchestrator"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Reports gives access to the latest run.
type Reports interface {
	Latest() *orchestrator.Report
}

// Snapshots reads archived run data.
type Snapshots interface {
	Load(ctx context.Context, runID, name string) ([]byte, error)
}

// Handler serves the read-only status routes.
type Handler struct {
	reports   Reports
	snapshots Snapshots
	apiKey    string
	log       *zap.Logger
}

// NewHandler creates a status handler. snapshots may be nil.
func NewHandler(reports Reports, snapshots Snapshots, apiKey string, log *zap.Logger) *Handler {
	return &Handler{reports: reports, snapshots: snapshots, apiKey: apiKey, log: log}
}

// RegisterRoutes registers the status routes. /health is public; /runs
// requires the API key when one is configured.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)

	runs := app.Group("/runs", auth.New(auth.Config{ApiKey: h.apiKey}))
	runs.Get("/latest", h.HandleLatest)
	runs.Get("/:id/snapshots/:name", h.HandleSnapshot)
}

// HandleHealth reports liveness and the last run outcome.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	body := fiber.Map{"status": "ok"}
	if r := h.reports.Latest(); r != nil {
		body["last_run"] = r.RunID
		body["last_run_failed"] = r.Failed()
		body["last_run_finished_at"] = r.FinishedAt
	}
	return c.JSON(body)
}

// HandleLatest returns the report of the most recent run.
func (h *Handler) HandleLatest(c *fiber.Ctx) error {
	r := h.reports.Latest()
	if r == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no run has finished yet"})
	}
	return c.JSON(r)
}

// HandleSnapshot returns one archived snapshot as stored.
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.log, c)
	if h.snapshots == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": archive.ErrDisabled.Error()})
	}

	id, name := c.Params("id"), c.Params("name")
	data, err := h.snapshots.Load(c.Context(), id, name)
	if err != nil {
		switch {
		case errors.Is(err, archive.ErrInvalidName):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, archive.ErrDisabled):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, storage.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "snapshot not found"})
		}
		l.Error("Failed to load snapshot", zap.String("run_id", id), zap.String("name", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load snapshot"})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}
