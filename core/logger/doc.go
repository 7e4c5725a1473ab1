// Package logger builds the zap logger shared by every component.
//
// Level debug selects zap's development preset; other levels start from the
// production preset with sampling disabled. Format console prints colored
// levels for terminals, json is the default for the scheduler.
//
// Correlation fields:
//   - WithRayID copies the ray id of an HTTP request from the Fiber context.
//   - WithRunID tags every line of one pipeline run.
//   - WithTask names the task inside that run.
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	runLog := logger.WithRunID(log, runID)
//	runLog.Info("Run started")
package logger
