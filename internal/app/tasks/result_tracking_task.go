package tasks

import (
	"context"
	"fmt"
)

// newResultTrackingTask settles pending signals and force-expires the
// stale ones.
func newResultTrackingTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "result_tracking")

	return func(ctx context.Context) error {
		if err := deps.Tracker.CheckPending(ctx); err != nil {
			return fmt.Errorf("result tracking failed: %w", err)
		}
		if err := deps.Tracker.ForceExpire(ctx); err != nil {
			log.ErrorContext(ctx, "Force-expire failed", "error", err)
		}
		return nil
	}
}
