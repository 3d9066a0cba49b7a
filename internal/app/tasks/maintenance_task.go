package tasks

import (
	"context"
	"fmt"
	"time"
)

// metricsRetention is how long per-minute metrics rows are kept. The
// windowed calculations only ever look minutes back, so anything beyond
// a couple of days is dead weight.
const metricsRetention = 48 * time.Hour

// newMaintenanceTask prunes old metrics rows and rebuilds the aggregated
// strategy statistics.
func newMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "maintenance")

	return func(ctx context.Context) error {
		cutoff := time.Now().Add(-metricsRetention)

		pruned, err := deps.Store.PruneMetrics(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("metrics pruning failed: %w", err)
		}
		log.InfoContext(ctx, "Maintenance pruned metrics", "rows", pruned)

		if err := deps.Store.RecomputeStrategyStats(ctx); err != nil {
			return fmt.Errorf("strategy stats recompute failed: %w", err)
		}
		return nil
	}
}
