// Package tasks implements the scheduled background tasks of the
// monitoring system: result tracking, database maintenance, and
// threshold optimization.
package tasks

import (
	"log/slog"

	"github.com/betbog/betbog/internal/config"
	"github.com/betbog/betbog/internal/database"
	"github.com/betbog/betbog/internal/optimizer"
	"github.com/betbog/betbog/internal/strategy"
	"github.com/betbog/betbog/internal/tracker"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Tracker   *tracker.Tracker
	Engine    *strategy.Engine
	Optimizer *optimizer.Optimizer
}
