// Package app wires the monitoring system's components together and
// manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/betbog/betbog/internal/monitor"
)

// App orchestrates the main system: the polling monitor and the task
// scheduler, with an optional Telegram notifier already wired into them.
type App struct {
	logger    *slog.Logger
	monitor   *monitor.Monitor
	scheduler *Scheduler
}

// New creates the orchestrator.
func New(logger *slog.Logger, mon *monitor.Monitor, scheduler *Scheduler) *App {
	return &App{
		logger:    logger.With("component", "orchestrator"),
		monitor:   mon,
		scheduler: scheduler,
	}
}

// Run starts the monitor loop and the scheduler, blocking until the
// context is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := a.monitor.Run(gCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("monitor stopped: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := a.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		a.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := a.scheduler.Stop(); err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Orchestrator stopped gracefully.")
	return nil
}
