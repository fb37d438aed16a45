package usecase

import (
	"context"
	"log/slog"
	"time"

	"ListingScanner/internal/ports"
)

// Watcher wires the interval scheduler to the evaluation engine.
type Watcher struct {
	driver ports.Scheduler
	engine *Engine
	logger *slog.Logger
}

// NewWatcher returns a helper to start/stop the recurring evaluation job.
func NewWatcher(driver ports.Scheduler, engine *Engine, logger *slog.Logger) *Watcher {
	return &Watcher{driver: driver, engine: engine, logger: logger}
}

// Start registers the evaluation pass with the scheduler. Pass failures
// are logged and never stop the timer; a malformed page must at worst
// produce a stream of empty passes.
func (w *Watcher) Start(ctx context.Context) error {
	if w.driver == nil || w.engine == nil {
		return nil
	}

	job := func(time.Time) {
		if _, err := w.engine.RunPass(ctx); err != nil && w.logger != nil {
			w.logger.Warn("evaluation pass failed", "error", err)
		}
	}

	return w.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.driver == nil {
		return nil
	}

	return w.driver.Stop(ctx)
}
