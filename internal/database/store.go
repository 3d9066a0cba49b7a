package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// PendingSignal pairs a pending signal with its match for settlement.
type PendingSignal struct {
	Signal Signal `db:"signal"`
	Match  Match  `db:"match"`
}

// SignalCounts summarizes signals by settlement state for the menu bot.
type SignalCounts struct {
	Total   int `db:"total"`
	Pending int `db:"pending"`
	Won     int `db:"won"`
	Lost    int `db:"lost"`
}

// ProfitSummary aggregates settled signal outcomes over a period.
type ProfitSummary struct {
	Signals int     `db:"signals"`
	Won     int     `db:"won"`
	Lost    int     `db:"lost"`
	Profit  float64 `db:"profit"`
	Staked  float64 `db:"staked"`
}

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertMatch inserts a match or updates its live state, keyed by the
	// API match ID. The match's ID field is populated on return.
	UpsertMatch(ctx context.Context, match *Match) error

	// GetMatchByAPIID retrieves a match by API match ID. Returns nil, nil if not found.
	GetMatchByAPIID(ctx context.Context, apiMatchID string) (*Match, error)

	// LiveMatches retrieves matches currently marked live, most recently updated first.
	LiveMatches(ctx context.Context, limit int) ([]Match, error)

	// UpsertMetrics inserts or replaces the metrics snapshot for a match minute.
	UpsertMetrics(ctx context.Context, row *MetricsRow) error

	// MetricsHistory retrieves all stored metrics for a match in minute order.
	MetricsHistory(ctx context.Context, matchID int64) ([]MetricsRow, error)

	// PruneMetrics deletes metrics rows older than the cutoff. Returns rows deleted.
	PruneMetrics(ctx context.Context, cutoff time.Time) (int64, error)

	// InsertSignal inserts a new signal record and populates its ID.
	InsertSignal(ctx context.Context, signal *Signal) error

	// PendingSignals retrieves unsettled signals created after the cutoff,
	// joined with their matches.
	PendingSignals(ctx context.Context, cutoff time.Time) ([]PendingSignal, error)

	// SettleSignal records the outcome of a signal.
	SettleSignal(ctx context.Context, signalID int64, result string, profitLoss float64) error

	// ForceExpireSignals settles pending signals created before the cutoff
	// as losses. Returns the number of signals expired.
	ForceExpireSignals(ctx context.Context, cutoff time.Time) (int64, error)

	// SettledSignals retrieves win/loss signals for a strategy, oldest first.
	SettledSignals(ctx context.Context, strategyName string) ([]Signal, error)

	// AllStrategyStats retrieves stats for every known strategy.
	AllStrategyStats(ctx context.Context) ([]StrategyStats, error)

	// EnsureStrategyStats creates a stats row with the given config if the
	// strategy is not known yet.
	EnsureStrategyStats(ctx context.Context, strategyName string, config JSONMap) error

	// UpdateStrategyConfig replaces the stored config for a strategy and
	// stamps last_optimized.
	UpdateStrategyConfig(ctx context.Context, strategyName string, config JSONMap) error

	// IncrementStrategySignals bumps the total signal counter for a strategy.
	IncrementStrategySignals(ctx context.Context, strategyName string) error

	// RecomputeStrategyStats rebuilds totals, profit, and ROI for every
	// strategy from the signals table in a single transaction.
	RecomputeStrategyStats(ctx context.Context) error

	// SignalCounts returns signal totals by settlement state.
	SignalCounts(ctx context.Context) (SignalCounts, error)

	// ProfitSummary aggregates settled signals created at or after since.
	ProfitSummary(ctx context.Context, since time.Time) (ProfitSummary, error)

	// RecentSignals retrieves the most recent signals with the given result
	// ("" for any), newest first.
	RecentSignals(ctx context.Context, result string, limit int) ([]PendingSignal, error)
}

// sqlxStore implements Store using sqlx over PostgreSQL.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) UpsertMatch(ctx context.Context, match *Match) error {
	if match == nil {
		return fmt.Errorf("cannot upsert nil match")
	}
	if match.APIMatchID == "" {
		return fmt.Errorf("match must have a non-empty api_match_id")
	}

	query := `
        INSERT INTO matches (api_match_id, home_team, away_team, league, kickoff,
                             status, minute, home_score, away_score, stats, updated_at)
        VALUES (:api_match_id, :home_team, :away_team, :league, :kickoff,
                :status, :minute, :home_score, :away_score, :stats, now())
        ON CONFLICT (api_match_id) DO UPDATE SET
            status     = EXCLUDED.status,
            minute     = EXCLUDED.minute,
            home_score = EXCLUDED.home_score,
            away_score = EXCLUDED.away_score,
            stats      = COALESCE(EXCLUDED.stats, matches.stats),
            updated_at = now()
        RETURNING id;
    `

	rows, err := s.db.NamedQueryContext(ctx, query, match)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting match", "api_match_id", match.APIMatchID, "error", err)
		return fmt.Errorf("failed to upsert match %s: %w", match.APIMatchID, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&match.ID); err != nil {
			return fmt.Errorf("failed to scan upserted match id: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read upserted match id: %w", err)
	}

	s.logger.DebugContext(ctx, "Match upserted", "api_match_id", match.APIMatchID, "id", match.ID)
	return nil
}

func (s *sqlxStore) GetMatchByAPIID(ctx context.Context, apiMatchID string) (*Match, error) {
	if apiMatchID == "" {
		return nil, fmt.Errorf("api_match_id cannot be empty")
	}

	var match Match
	query := `SELECT * FROM matches WHERE api_match_id = $1`

	err := s.db.GetContext(ctx, &match, query, apiMatchID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting match", "api_match_id", apiMatchID, "error", err)
		return nil, fmt.Errorf("failed to get match %s: %w", apiMatchID, err)
	}
	return &match, nil
}

func (s *sqlxStore) LiveMatches(ctx context.Context, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 10
	}

	var matches []Match
	query := `SELECT * FROM matches WHERE status = $1 ORDER BY updated_at DESC LIMIT $2`

	if err := s.db.SelectContext(ctx, &matches, query, StatusLive, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting live matches", "error", err)
		return nil, fmt.Errorf("failed to get live matches: %w", err)
	}
	return matches, nil
}

func (s *sqlxStore) UpsertMetrics(ctx context.Context, row *MetricsRow) error {
	if row == nil {
		return fmt.Errorf("cannot upsert nil metrics row")
	}
	if row.MatchID == 0 {
		return fmt.Errorf("metrics row must have a non-zero match_id")
	}

	query := `
        INSERT INTO match_metrics (
            match_id, minute,
            dxg_home, dxg_away, gradient_home, gradient_away, wave_amplitude,
            tiredness_home, tiredness_away, momentum_home, momentum_away,
            stability_home, stability_away, shots_per_attack_home, shots_per_attack_away,
            shots_home, shots_away, attacks_home, attacks_away,
            possession_home, possession_away, corners_home, corners_away
        ) VALUES (
            :match_id, :minute,
            :dxg_home, :dxg_away, :gradient_home, :gradient_away, :wave_amplitude,
            :tiredness_home, :tiredness_away, :momentum_home, :momentum_away,
            :stability_home, :stability_away, :shots_per_attack_home, :shots_per_attack_away,
            :shots_home, :shots_away, :attacks_home, :attacks_away,
            :possession_home, :possession_away, :corners_home, :corners_away
        )
        ON CONFLICT (match_id, minute) DO UPDATE SET
            dxg_home = EXCLUDED.dxg_home,
            dxg_away = EXCLUDED.dxg_away,
            gradient_home = EXCLUDED.gradient_home,
            gradient_away = EXCLUDED.gradient_away,
            wave_amplitude = EXCLUDED.wave_amplitude,
            tiredness_home = EXCLUDED.tiredness_home,
            tiredness_away = EXCLUDED.tiredness_away,
            momentum_home = EXCLUDED.momentum_home,
            momentum_away = EXCLUDED.momentum_away,
            stability_home = EXCLUDED.stability_home,
            stability_away = EXCLUDED.stability_away,
            shots_per_attack_home = EXCLUDED.shots_per_attack_home,
            shots_per_attack_away = EXCLUDED.shots_per_attack_away,
            shots_home = EXCLUDED.shots_home,
            shots_away = EXCLUDED.shots_away,
            attacks_home = EXCLUDED.attacks_home,
            attacks_away = EXCLUDED.attacks_away,
            possession_home = EXCLUDED.possession_home,
            possession_away = EXCLUDED.possession_away,
            corners_home = EXCLUDED.corners_home,
            corners_away = EXCLUDED.corners_away;
    `

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting metrics", "match_id", row.MatchID, "minute", row.Minute, "error", err)
		return fmt.Errorf("failed to upsert metrics for match %d minute %d: %w", row.MatchID, row.Minute, err)
	}

	s.logger.DebugContext(ctx, "Metrics stored", "match_id", row.MatchID, "minute", row.Minute)
	return nil
}

func (s *sqlxStore) MetricsHistory(ctx context.Context, matchID int64) ([]MetricsRow, error) {
	if matchID == 0 {
		return nil, fmt.Errorf("match_id cannot be zero")
	}

	var rows []MetricsRow
	query := `SELECT * FROM match_metrics WHERE match_id = $1 ORDER BY minute ASC`

	if err := s.db.SelectContext(ctx, &rows, query, matchID); err != nil {
		s.logger.ErrorContext(ctx, "Error getting metrics history", "match_id", matchID, "error", err)
		return nil, fmt.Errorf("failed to get metrics history for match %d: %w", matchID, err)
	}
	return rows, nil
}

func (s *sqlxStore) PruneMetrics(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM match_metrics WHERE created_at < $1`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning metrics", "error", err)
		return 0, fmt.Errorf("failed to prune metrics: %w", err)
	}

	count, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Pruned old metrics", "count", count, "cutoff", cutoff)
	return count, nil
}

func (s *sqlxStore) InsertSignal(ctx context.Context, signal *Signal) error {
	if signal == nil {
		return fmt.Errorf("cannot insert nil signal")
	}
	if signal.MatchID == 0 {
		return fmt.Errorf("signal must have a non-zero match_id")
	}
	if signal.StrategyName == "" {
		return fmt.Errorf("signal must have a strategy name")
	}
	if signal.Result == "" {
		signal.Result = ResultPending
	}

	query := `
        INSERT INTO signals (match_id, strategy_name, signal_type, confidence,
                             threshold_used, trigger_minute, prediction, odds,
                             result, profit_loss, stake, trigger_metrics)
        VALUES (:match_id, :strategy_name, :signal_type, :confidence,
                :threshold_used, :trigger_minute, :prediction, :odds,
                :result, :profit_loss, :stake, :trigger_metrics)
        RETURNING id;
    `

	rows, err := s.db.NamedQueryContext(ctx, query, signal)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error inserting signal",
			"match_id", signal.MatchID, "strategy", signal.StrategyName, "error", err)
		return fmt.Errorf("failed to insert signal (%s): %w", signal.StrategyName, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&signal.ID); err != nil {
			return fmt.Errorf("failed to scan inserted signal id: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read inserted signal id: %w", err)
	}

	s.logger.DebugContext(ctx, "Signal inserted",
		"id", signal.ID, "strategy", signal.StrategyName, "type", signal.SignalType)
	return nil
}

const pendingSignalColumns = `
        s.id AS "signal.id", s.match_id AS "signal.match_id", s.created_at AS "signal.created_at",
        s.strategy_name AS "signal.strategy_name", s.signal_type AS "signal.signal_type",
        s.confidence AS "signal.confidence", s.threshold_used AS "signal.threshold_used",
        s.trigger_minute AS "signal.trigger_minute", s.prediction AS "signal.prediction",
        s.odds AS "signal.odds", s.result AS "signal.result", s.profit_loss AS "signal.profit_loss",
        s.stake AS "signal.stake", s.resolved_at AS "signal.resolved_at",
        s.trigger_metrics AS "signal.trigger_metrics",
        m.id AS "match.id", m.created_at AS "match.created_at", m.updated_at AS "match.updated_at",
        m.api_match_id AS "match.api_match_id", m.home_team AS "match.home_team",
        m.away_team AS "match.away_team", m.league AS "match.league", m.kickoff AS "match.kickoff",
        m.status AS "match.status", m.minute AS "match.minute",
        m.home_score AS "match.home_score", m.away_score AS "match.away_score",
        m.stats AS "match.stats"`

func (s *sqlxStore) PendingSignals(ctx context.Context, cutoff time.Time) ([]PendingSignal, error) {
	var pending []PendingSignal
	query := `
        SELECT ` + pendingSignalColumns + `
        FROM signals s
        JOIN matches m ON m.id = s.match_id
        WHERE s.result = $1 AND s.created_at >= $2
        ORDER BY s.created_at ASC;
    `

	if err := s.db.SelectContext(ctx, &pending, query, ResultPending, cutoff); err != nil {
		s.logger.ErrorContext(ctx, "Error getting pending signals", "error", err)
		return nil, fmt.Errorf("failed to get pending signals: %w", err)
	}
	return pending, nil
}

func (s *sqlxStore) SettleSignal(ctx context.Context, signalID int64, result string, profitLoss float64) error {
	if result != ResultWin && result != ResultLoss && result != ResultPush {
		return fmt.Errorf("invalid settlement result %q", result)
	}

	query := `
        UPDATE signals
        SET result = $1, profit_loss = $2, resolved_at = now()
        WHERE id = $3 AND result = $4;
    `

	res, err := s.db.ExecContext(ctx, query, result, profitLoss, signalID, ResultPending)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error settling signal", "signal_id", signalID, "error", err)
		return fmt.Errorf("failed to settle signal %d: %w", signalID, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("signal %d is not pending", signalID)
	}

	s.logger.InfoContext(ctx, "Signal settled", "signal_id", signalID, "result", result, "profit_loss", profitLoss)
	return nil
}

func (s *sqlxStore) ForceExpireSignals(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
        UPDATE signals
        SET result = $1, profit_loss = -stake, resolved_at = now()
        WHERE result = $2 AND created_at < $3;
    `

	res, err := s.db.ExecContext(ctx, query, ResultLoss, ResultPending, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error force-expiring signals", "error", err)
		return 0, fmt.Errorf("failed to force-expire signals: %w", err)
	}

	count, _ := res.RowsAffected()
	if count > 0 {
		s.logger.WarnContext(ctx, "Force-expired stale pending signals", "count", count)
	}
	return count, nil
}

func (s *sqlxStore) SettledSignals(ctx context.Context, strategyName string) ([]Signal, error) {
	if strategyName == "" {
		return nil, fmt.Errorf("strategy name cannot be empty")
	}

	var signals []Signal
	query := `
        SELECT * FROM signals
        WHERE strategy_name = $1 AND result IN ($2, $3)
        ORDER BY created_at ASC;
    `

	if err := s.db.SelectContext(ctx, &signals, query, strategyName, ResultWin, ResultLoss); err != nil {
		s.logger.ErrorContext(ctx, "Error getting settled signals", "strategy", strategyName, "error", err)
		return nil, fmt.Errorf("failed to get settled signals for %s: %w", strategyName, err)
	}
	return signals, nil
}

func (s *sqlxStore) AllStrategyStats(ctx context.Context) ([]StrategyStats, error) {
	var stats []StrategyStats
	query := `SELECT * FROM strategy_stats ORDER BY strategy_name ASC`

	if err := s.db.SelectContext(ctx, &stats, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting strategy stats", "error", err)
		return nil, fmt.Errorf("failed to get strategy stats: %w", err)
	}
	return stats, nil
}

func (s *sqlxStore) EnsureStrategyStats(ctx context.Context, strategyName string, config JSONMap) error {
	if strategyName == "" {
		return fmt.Errorf("strategy name cannot be empty")
	}

	query := `
        INSERT INTO strategy_stats (strategy_name, config)
        VALUES ($1, $2)
        ON CONFLICT (strategy_name) DO NOTHING;
    `

	if _, err := s.db.ExecContext(ctx, query, strategyName, config); err != nil {
		s.logger.ErrorContext(ctx, "Error ensuring strategy stats", "strategy", strategyName, "error", err)
		return fmt.Errorf("failed to ensure strategy stats for %s: %w", strategyName, err)
	}
	return nil
}

func (s *sqlxStore) UpdateStrategyConfig(ctx context.Context, strategyName string, config JSONMap) error {
	query := `
        UPDATE strategy_stats
        SET config = $1, last_optimized = now(), updated_at = now()
        WHERE strategy_name = $2;
    `

	res, err := s.db.ExecContext(ctx, query, config, strategyName)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating strategy config", "strategy", strategyName, "error", err)
		return fmt.Errorf("failed to update config for %s: %w", strategyName, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("strategy %s is not known", strategyName)
	}
	return nil
}

func (s *sqlxStore) IncrementStrategySignals(ctx context.Context, strategyName string) error {
	query := `
        UPDATE strategy_stats
        SET total_signals = total_signals + 1, updated_at = now()
        WHERE strategy_name = $1;
    `

	if _, err := s.db.ExecContext(ctx, query, strategyName); err != nil {
		s.logger.ErrorContext(ctx, "Error incrementing strategy signals", "strategy", strategyName, "error", err)
		return fmt.Errorf("failed to increment signals for %s: %w", strategyName, err)
	}
	return nil
}

func (s *sqlxStore) RecomputeStrategyStats(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for stats recompute", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query := `
        UPDATE strategy_stats ss
        SET total_signals   = agg.total,
            winning_signals = agg.wins,
            total_profit    = agg.profit,
            roi             = CASE WHEN agg.total > 0 THEN agg.profit / agg.total ELSE 0 END,
            updated_at      = now()
        FROM (
            SELECT strategy_name,
                   COUNT(*) AS total,
                   COUNT(*) FILTER (WHERE result = $1) AS wins,
                   COALESCE(SUM(profit_loss), 0) AS profit
            FROM signals
            GROUP BY strategy_name
        ) AS agg
        WHERE agg.strategy_name = ss.strategy_name;
    `

	if _, err := tx.ExecContext(ctx, query, ResultWin); err != nil {
		s.logger.ErrorContext(ctx, "Error recomputing strategy stats", "error", err)
		return fmt.Errorf("failed to recompute strategy stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit stats recompute", "error", err)
		return fmt.Errorf("failed to commit stats recompute: %w", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Strategy stats recomputed")
	return nil
}

func (s *sqlxStore) SignalCounts(ctx context.Context) (SignalCounts, error) {
	var counts SignalCounts
	query := `
        SELECT COUNT(*) AS total,
               COUNT(*) FILTER (WHERE result = $1) AS pending,
               COUNT(*) FILTER (WHERE result = $2) AS won,
               COUNT(*) FILTER (WHERE result = $3) AS lost
        FROM signals;
    `

	if err := s.db.GetContext(ctx, &counts, query, ResultPending, ResultWin, ResultLoss); err != nil {
		s.logger.ErrorContext(ctx, "Error getting signal counts", "error", err)
		return SignalCounts{}, fmt.Errorf("failed to get signal counts: %w", err)
	}
	return counts, nil
}

func (s *sqlxStore) ProfitSummary(ctx context.Context, since time.Time) (ProfitSummary, error) {
	var summary ProfitSummary
	query := `
        SELECT COUNT(*) AS signals,
               COUNT(*) FILTER (WHERE result = $1) AS won,
               COUNT(*) FILTER (WHERE result = $2) AS lost,
               COALESCE(SUM(profit_loss), 0) AS profit,
               COALESCE(SUM(stake), 0) AS staked
        FROM signals
        WHERE result IN ($1, $2, $3) AND created_at >= $4;
    `

	if err := s.db.GetContext(ctx, &summary, query, ResultWin, ResultLoss, ResultPush, since); err != nil {
		s.logger.ErrorContext(ctx, "Error getting profit summary", "error", err)
		return ProfitSummary{}, fmt.Errorf("failed to get profit summary: %w", err)
	}
	return summary, nil
}

func (s *sqlxStore) RecentSignals(ctx context.Context, result string, limit int) ([]PendingSignal, error) {
	if limit <= 0 {
		limit = 10
	}

	var signals []PendingSignal
	query := `
        SELECT ` + pendingSignalColumns + `
        FROM signals s
        JOIN matches m ON m.id = s.match_id
        WHERE ($1 = '' OR s.result = $1)
        ORDER BY s.created_at DESC
        LIMIT $2;
    `

	if err := s.db.SelectContext(ctx, &signals, query, result, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent signals", "result", result, "error", err)
		return nil, fmt.Errorf("failed to get recent signals: %w", err)
	}
	return signals, nil
}
