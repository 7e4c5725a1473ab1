package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Loop runs the pipeline, sleeps for the configured interval and repeats
// until ctx is cancelled. A run that fails outright, including by panic, is
// followed by the shorter recovery interval instead.
func (o *Orchestrator) Loop(ctx context.Context) error {
	o.log.Info("Scheduler started",
		zap.Duration("interval", o.cfg.Interval),
		zap.Duration("recovery_interval", o.cfg.RecoveryInterval),
	)
	for {
		wait := o.cfg.Interval
		if err := o.safeRun(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.log.Error("Run failed, retrying after recovery interval",
				zap.Error(err),
				zap.Duration("retry_in", o.cfg.RecoveryInterval),
			)
			wait = o.cfg.RecoveryInterval
		}

		o.log.Info("Next run scheduled", zap.Time("at", o.now().Add(wait)))
		if err := o.sleep(ctx, wait); err != nil {
			o.log.Info("Scheduler stopped")
			return err
		}
	}
}

func (o *Orchestrator) safeRun(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("run panicked: %v", p)
		}
	}()
	_, err = o.RunOnce(ctx, RunOptions{})
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
