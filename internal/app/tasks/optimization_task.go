package tasks

import (
	"context"

	"github.com/betbog/betbog/internal/database"
)

// newOptimizationTask re-derives strategy thresholds from settled
// signals, applies them to the engine, persists them as the strategy's
// stored config, and saves the optimizer state file.
func newOptimizationTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "optimization")

	return func(ctx context.Context) error {
		optimized := 0
		for _, name := range deps.Engine.Strategies() {
			settled, err := deps.Store.SettledSignals(ctx, name)
			if err != nil {
				log.ErrorContext(ctx, "Error loading settled signals", "strategy", name, "error", err)
				continue
			}

			thresholds := deps.Optimizer.OptimizeThresholds(name, settled)
			if thresholds == nil {
				continue
			}

			if err := deps.Engine.UpdateConfig(name, thresholds); err != nil {
				log.ErrorContext(ctx, "Error applying thresholds", "strategy", name, "error", err)
				continue
			}

			cfg := make(database.JSONMap, len(thresholds))
			for k, v := range thresholds {
				cfg[k] = v
			}
			if err := deps.Store.UpdateStrategyConfig(ctx, name, cfg); err != nil {
				log.ErrorContext(ctx, "Error persisting thresholds", "strategy", name, "error", err)
				continue
			}
			optimized++
		}

		log.InfoContext(ctx, "Optimization pass complete", "strategies_optimized", optimized)

		if path := deps.Config.Optimizer.StatePath; path != "" {
			if err := deps.Optimizer.SaveState(path); err != nil {
				log.ErrorContext(ctx, "Error saving optimizer state", "error", err)
			}
		}
		return nil
	}
}
