package status

import (
	"horror-tracker/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	enabled bool
	handler *Handler
}

// NewFeature creates the status feature.
func NewFeature(cfg server.Config, reports Reports, snapshots Snapshots, log *zap.Logger) *Feature {
	return &Feature{
		enabled: cfg.Enabled,
		handler: NewHandler(reports, snapshots, cfg.ApiKey, log),
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "status"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
