// Package optimizer tunes strategy thresholds from settled signal history
// using simple statistics, and adjusts live signal confidence against
// learned win/loss patterns. No ML, just percentiles and means.
package optimizer

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/betbog/betbog/internal/database"
)

// StrategyPerformance is the learned profile of one strategy.
type StrategyPerformance struct {
	WinRate             float64   `json:"win_rate"`
	TotalSignals        int       `json:"total_signals"`
	AvgConfidenceWins   float64   `json:"avg_confidence_wins"`
	AvgConfidenceLosses float64   `json:"avg_confidence_losses"`
	LastOptimized       time.Time `json:"last_optimized"`
}

// Optimizer holds per-strategy performance profiles. Safe for concurrent
// use; the monitor adjusts confidence while the scheduler re-optimizes.
type Optimizer struct {
	mu         sync.RWMutex
	stats      map[string]StrategyPerformance
	minSamples int
	logger     *slog.Logger
}

// New creates an optimizer. minSamples is the settled-signal count below
// which threshold optimization declines to run.
func New(minSamples int, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Optimizer{
		stats:      make(map[string]StrategyPerformance),
		minSamples: minSamples,
		logger:     logger.With("component", "optimizer"),
	}
}

// Performance returns the learned profile for a strategy, if any.
func (o *Optimizer) Performance(strategyName string) (StrategyPerformance, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	perf, ok := o.stats[strategyName]
	return perf, ok
}

// Adjust scales a signal's confidence against the strategy's historical
// win/loss confidence profile and the match minute, clamped to
// [0.1, 0.95]. Without history the confidence passes through unchanged.
func (o *Optimizer) Adjust(strategyName string, confidence float64, minute int) (float64, string) {
	o.mu.RLock()
	perf, ok := o.stats[strategyName]
	o.mu.RUnlock()

	if !ok || perf.TotalSignals == 0 {
		return confidence, "No historical data available"
	}

	confidenceMultiplier := 1.0
	switch {
	case confidence >= perf.AvgConfidenceWins:
		confidenceMultiplier = 1.1
	case confidence <= perf.AvgConfidenceLosses:
		confidenceMultiplier = 0.9
	}

	timeMultiplier := 1.0
	switch {
	case minute >= 30 && minute <= 70:
		timeMultiplier = 1.05
	case minute < 20 || minute > 80:
		timeMultiplier = 0.95
	}

	adjusted := confidence * confidenceMultiplier * timeMultiplier
	final := math.Max(0.1, math.Min(0.95, adjusted))

	explanation := fmt.Sprintf("Statistical prediction based on %d historical signals, %.1f%% win rate",
		perf.TotalSignals, perf.WinRate*100)
	return final, explanation
}

// OptimizeThresholds derives new threshold values for a strategy from its
// settled signals. Returns nil when there are too few samples or no wins.
func (o *Optimizer) OptimizeThresholds(strategyName string, settled []database.Signal) map[string]float64 {
	if len(settled) < o.minSamples {
		o.logger.Warn("Not enough samples for optimization",
			"strategy", strategyName, "samples", len(settled), "required", o.minSamples)
		return nil
	}

	var wins, losses []database.Signal
	for _, s := range settled {
		switch s.Result {
		case database.ResultWin:
			wins = append(wins, s)
		case database.ResultLoss:
			losses = append(losses, s)
		}
	}
	if len(wins) == 0 {
		o.logger.Warn("No winning signals found", "strategy", strategyName)
		return nil
	}

	thresholds := make(map[string]float64)

	avgWinConf := meanConfidence(wins)
	thresholds["min_confidence"] = round2(math.Max(0.6, avgWinConf-0.05))

	switch strategyName {
	case "dxg_spike":
		values := triggerValues(wins, "total_dxg")
		if len(values) > 0 {
			sort.Float64s(values)
			p25 := values[len(values)/4]
			thresholds["threshold"] = round3(math.Max(0.1, p25*0.8))
		}
	case "momentum_shift":
		values := triggerValues(wins, "momentum_diff")
		if len(values) > 0 {
			thresholds["threshold"] = round3(math.Max(0.15, mean(values)*0.7))
		}
	case "tiredness_advantage":
		values := triggerValues(wins, "tiredness_diff")
		if len(values) > 0 {
			thresholds["threshold"] = round3(math.Max(0.2, mean(values)*0.8))
		}
	}

	minMinute, maxMinute := minuteWindow(wins)
	thresholds["min_minute"] = float64(minMinute)
	thresholds["max_minute"] = float64(maxMinute)

	avgLossConf := 0.0
	if len(losses) > 0 {
		avgLossConf = meanConfidence(losses)
	}

	o.mu.Lock()
	o.stats[strategyName] = StrategyPerformance{
		WinRate:             float64(len(wins)) / float64(len(settled)),
		TotalSignals:        len(settled),
		AvgConfidenceWins:   avgWinConf,
		AvgConfidenceLosses: avgLossConf,
		LastOptimized:       time.Now().UTC(),
	}
	o.mu.Unlock()

	o.logger.Info("Strategy thresholds optimized",
		"strategy", strategyName, "samples", len(settled), "wins", len(wins), "thresholds", thresholds)
	return thresholds
}

// minuteWindow is the winning trigger-minute range with a 5-minute buffer
// on both ends, clamped to [15, 80].
func minuteWindow(wins []database.Signal) (int, int) {
	minMinute, maxMinute := wins[0].TriggerMinute, wins[0].TriggerMinute
	for _, s := range wins[1:] {
		if s.TriggerMinute < minMinute {
			minMinute = s.TriggerMinute
		}
		if s.TriggerMinute > maxMinute {
			maxMinute = s.TriggerMinute
		}
	}
	minMinute += 5
	maxMinute -= 5
	if minMinute < 15 {
		minMinute = 15
	}
	if maxMinute > 80 {
		maxMinute = 80
	}
	return minMinute, maxMinute
}

func triggerValues(signals []database.Signal, key string) []float64 {
	var values []float64
	for _, s := range signals {
		if v := s.TriggerMetrics.Float(key, 0); v > 0 {
			values = append(values, v)
		}
	}
	return values
}

func meanConfidence(signals []database.Signal) float64 {
	var sum float64
	for _, s := range signals {
		sum += s.Confidence
	}
	return sum / float64(len(signals))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
