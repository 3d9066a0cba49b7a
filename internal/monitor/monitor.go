// Package monitor runs the live match polling loop: fetch in-play
// matches, derive metrics, evaluate strategies, and persist the
// resulting signals.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/betbog/betbog/internal/database"
	"github.com/betbog/betbog/internal/metrics"
	"github.com/betbog/betbog/internal/optimizer"
	"github.com/betbog/betbog/internal/sportsapi"
	"github.com/betbog/betbog/internal/strategy"
)

// LiveAPI is the slice of the sports API the monitor needs.
type LiveAPI interface {
	LiveMatches(ctx context.Context) ([]json.RawMessage, error)
	MatchStats(ctx context.Context, eventID string) (map[string]json.RawMessage, error)
}

// SignalNotifier delivers new-signal notifications. May be nil.
type SignalNotifier interface {
	NotifySignal(ctx context.Context, signal database.Signal, match database.Match) error
}

// Config holds the monitor's sweep parameters.
type Config struct {
	PollInterval         time.Duration
	MaxConcurrentMatches int
	MinMinute            int
	MaxMinute            int
}

// Monitor polls live matches and turns them into signals.
type Monitor struct {
	store    database.Store
	api      LiveAPI
	engine   *strategy.Engine
	opt      *optimizer.Optimizer
	notifier SignalNotifier
	cfg      Config
	logger   *slog.Logger
}

// New creates a monitor. notifier may be nil to disable notifications.
func New(
	store database.Store,
	api LiveAPI,
	engine *strategy.Engine,
	opt *optimizer.Optimizer,
	notifier SignalNotifier,
	cfg Config,
	logger *slog.Logger,
) *Monitor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Monitor{
		store:    store,
		api:      api,
		engine:   engine,
		opt:      opt,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With("component", "monitor"),
	}
}

// Run executes sweeps at the configured interval until the context is
// canceled. The first sweep starts immediately.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Monitor starting",
		"poll_interval", m.cfg.PollInterval, "max_matches", m.cfg.MaxConcurrentMatches)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := m.Sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.logger.ErrorContext(ctx, "Sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			m.logger.InfoContext(ctx, "Monitor stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep processes one round of live matches. Per-match errors are logged
// and do not stop the sweep.
func (m *Monitor) Sweep(ctx context.Context) error {
	raws, err := m.api.LiveMatches(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch live matches: %w", err)
	}

	if len(raws) > m.cfg.MaxConcurrentMatches {
		raws = raws[:m.cfg.MaxConcurrentMatches]
	}

	processed, signals := 0, 0
	for _, raw := range raws {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		count, err := m.processMatch(ctx, raw)
		if err != nil {
			m.logger.ErrorContext(ctx, "Error processing match", "error", err)
			continue
		}
		processed++
		signals += count
	}

	m.logger.InfoContext(ctx, "Sweep complete",
		"matches", processed, "signals", signals)
	return nil
}

func (m *Monitor) processMatch(ctx context.Context, raw json.RawMessage) (int, error) {
	parsed, err := sportsapi.ParseMatch(raw)
	if err != nil {
		return 0, err
	}

	// The early and late phases produce noise, not signals.
	if parsed.Minute < m.cfg.MinMinute || parsed.Minute > m.cfg.MaxMinute {
		return 0, nil
	}

	match := &database.Match{
		APIMatchID: parsed.ID,
		HomeTeam:   parsed.HomeTeam,
		AwayTeam:   parsed.AwayTeam,
		League:     parsed.League,
		Status:     database.StatusLive,
		Minute:     parsed.Minute,
		HomeScore:  parsed.HomeScore,
		AwayScore:  parsed.AwayScore,
	}
	if !parsed.Kickoff.IsZero() {
		match.Kickoff.Time = parsed.Kickoff
		match.Kickoff.Valid = true
	}

	stats := parsed.Stats
	if stats == nil {
		fetched, err := m.fetchStats(ctx, parsed.ID)
		if err != nil {
			return 0, err
		}
		stats = fetched
	}
	if stats != nil {
		match.Stats = stats.Map()
	}

	if err := m.store.UpsertMatch(ctx, match); err != nil {
		return 0, err
	}
	if stats == nil {
		m.logger.DebugContext(ctx, "No stats for match, skipping analysis", "api_match_id", parsed.ID)
		return 0, nil
	}

	history, err := m.store.MetricsHistory(ctx, match.ID)
	if err != nil {
		return 0, err
	}

	snap := metrics.Compute(*stats, toSamples(history), parsed.Minute, parsed.HomeScore, parsed.AwayScore)

	if err := m.store.UpsertMetrics(ctx, metricsRow(match.ID, parsed.Minute, snap)); err != nil {
		return 0, err
	}

	state := strategy.MatchState{HomeScore: parsed.HomeScore, AwayScore: parsed.AwayScore}
	generated := m.engine.Evaluate(snap, state, parsed.Minute)

	stored := 0
	for _, sig := range generated {
		if err := m.persistSignal(ctx, *match, sig, snap); err != nil {
			m.logger.ErrorContext(ctx, "Error persisting signal",
				"strategy", sig.Strategy, "error", err)
			continue
		}
		stored++
	}
	return stored, nil
}

func (m *Monitor) fetchStats(ctx context.Context, eventID string) (*sportsapi.Stats, error) {
	raw, err := m.api.MatchStats(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	stats := sportsapi.NormalizeStats(raw)
	return &stats, nil
}

// persistSignal runs the optimizer adjustment, applies the per-strategy
// confidence floor, stores the signal, and sends the notification.
func (m *Monitor) persistSignal(ctx context.Context, match database.Match, sig strategy.Signal, snap metrics.Snapshot) error {
	adjusted, explanation := m.opt.Adjust(sig.Strategy, sig.Confidence, snap.Minute)
	if adjusted < m.engine.MinConfidence(sig.Strategy) {
		m.logger.DebugContext(ctx, "Signal dropped after adjustment",
			"strategy", sig.Strategy, "confidence", adjusted, "explanation", explanation)
		return nil
	}

	trigger := database.JSONMap(snap.Map())
	for k, v := range sig.TriggerMetrics {
		trigger[k] = v
	}

	record := &database.Signal{
		MatchID:        match.ID,
		StrategyName:   sig.Strategy,
		SignalType:     sig.Type,
		Confidence:     adjusted,
		ThresholdUsed:  sig.ThresholdUsed,
		TriggerMinute:  snap.Minute,
		Prediction:     sig.Prediction,
		Odds:           sig.RecommendedOdds,
		Stake:          sig.StakeMultiplier,
		TriggerMetrics: trigger,
	}

	if err := m.store.InsertSignal(ctx, record); err != nil {
		return err
	}
	if err := m.store.IncrementStrategySignals(ctx, sig.Strategy); err != nil {
		m.logger.WarnContext(ctx, "Error bumping strategy totals", "strategy", sig.Strategy, "error", err)
	}

	m.logger.InfoContext(ctx, "Signal generated",
		"strategy", sig.Strategy, "type", sig.Type,
		"confidence", adjusted, "match", match.HomeTeam+" vs "+match.AwayTeam)

	if m.notifier != nil {
		if err := m.notifier.NotifySignal(ctx, *record, match); err != nil {
			m.logger.ErrorContext(ctx, "Error sending signal notification", "error", err)
		}
	}
	return nil
}

func toSamples(rows []database.MetricsRow) []metrics.Sample {
	samples := make([]metrics.Sample, 0, len(rows))
	for _, r := range rows {
		samples = append(samples, metrics.Sample{
			Minute:      r.Minute,
			ShotsHome:   float64(r.ShotsHome),
			ShotsAway:   float64(r.ShotsAway),
			AttacksHome: float64(r.AttacksHome),
			AttacksAway: float64(r.AttacksAway),
		})
	}
	return samples
}

func metricsRow(matchID int64, minute int, snap metrics.Snapshot) *database.MetricsRow {
	return &database.MetricsRow{
		MatchID:            matchID,
		Minute:             minute,
		DxgHome:            snap.DxgHome,
		DxgAway:            snap.DxgAway,
		GradientHome:       snap.GradientHome,
		GradientAway:       snap.GradientAway,
		WaveAmplitude:      snap.WaveAmplitude,
		TirednessHome:      snap.TirednessHome,
		TirednessAway:      snap.TirednessAway,
		MomentumHome:       snap.MomentumHome,
		MomentumAway:       snap.MomentumAway,
		StabilityHome:      snap.StabilityHome,
		StabilityAway:      snap.StabilityAway,
		ShotsPerAttackHome: snap.ShotsPerAttackHome,
		ShotsPerAttackAway: snap.ShotsPerAttackAway,
		ShotsHome:          int(snap.ShotsHome),
		ShotsAway:          int(snap.ShotsAway),
		AttacksHome:        int(snap.AttacksHome),
		AttacksAway:        int(snap.AttacksAway),
		PossessionHome:     snap.PossessionHome,
		PossessionAway:     snap.PossessionAway,
		CornersHome:        int(snap.CornersHome),
		CornersAway:        int(snap.CornersAway),
	}
}
