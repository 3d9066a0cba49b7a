// Package tracker settles pending betting signals against refreshed match
// results and computes their profit or loss.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/betbog/betbog/internal/database"
	"github.com/betbog/betbog/internal/sportsapi"
	"github.com/betbog/betbog/internal/strategy"
)

// defaultOdds applies when a signal was stored without odds.
const defaultOdds = 2.0

// MatchAPI is the slice of the sports API the tracker needs.
type MatchAPI interface {
	MatchDetails(ctx context.Context, eventID string) (json.RawMessage, error)
	FinishedMatches(ctx context.Context, day time.Time) ([]json.RawMessage, error)
}

// ResultNotifier delivers settlement notifications. May be nil.
type ResultNotifier interface {
	NotifyResult(ctx context.Context, signal database.Signal, match database.Match, result string, profitLoss float64) error
}

// Config holds the tracker's timing knobs.
type Config struct {
	SignalMaxAge     time.Duration
	ForceExpireAge   time.Duration
	FinishedDaysBack int
}

// Tracker checks pending signals, refreshes their matches from the API,
// and settles the ones whose outcome is decidable.
type Tracker struct {
	store    database.Store
	api      MatchAPI
	notifier ResultNotifier
	cfg      Config
	logger   *slog.Logger
}

// New creates a tracker. notifier may be nil to disable notifications.
func New(store database.Store, api MatchAPI, notifier ResultNotifier, cfg Config, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{
		store:    store,
		api:      api,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With("component", "tracker"),
	}
}

// CheckPending settles every resolvable pending signal younger than the
// configured max age. Per-signal errors are logged, not fatal.
func (t *Tracker) CheckPending(ctx context.Context) error {
	cutoff := time.Now().Add(-t.cfg.SignalMaxAge)

	pending, err := t.store.PendingSignals(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to load pending signals: %w", err)
	}
	if len(pending) == 0 {
		t.logger.DebugContext(ctx, "No pending signals to check")
		return nil
	}

	t.logger.InfoContext(ctx, "Checking pending signals", "count", len(pending))

	resolved := 0
	for _, ps := range pending {
		ok, err := t.resolveSignal(ctx, ps.Signal, ps.Match)
		if err != nil {
			t.logger.ErrorContext(ctx, "Error resolving signal", "signal_id", ps.Signal.ID, "error", err)
			continue
		}
		if ok {
			resolved++
		}
	}

	if resolved > 0 {
		t.logger.InfoContext(ctx, "Resolved signal results", "count", resolved)
		if err := t.store.RecomputeStrategyStats(ctx); err != nil {
			t.logger.ErrorContext(ctx, "Error recomputing strategy stats", "error", err)
		}
	}
	return nil
}

// ForceExpire settles pending signals older than the configured expiry
// age as losses.
func (t *Tracker) ForceExpire(ctx context.Context) error {
	cutoff := time.Now().Add(-t.cfg.ForceExpireAge)

	count, err := t.store.ForceExpireSignals(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to force-expire signals: %w", err)
	}
	if count > 0 {
		if err := t.store.RecomputeStrategyStats(ctx); err != nil {
			t.logger.ErrorContext(ctx, "Error recomputing strategy stats", "error", err)
		}
	}
	return nil
}

func (t *Tracker) resolveSignal(ctx context.Context, signal database.Signal, match database.Match) (bool, error) {
	updated, err := t.refreshMatch(ctx, &match)
	if err != nil {
		return false, err
	}
	if !updated {
		t.logger.DebugContext(ctx, "No fresh data for match", "api_match_id", match.APIMatchID)
	}

	outcome := Resolve(signal, match, match.Minute)
	if !outcome.Resolvable {
		return false, nil
	}

	profitLoss := ProfitLoss(signal, outcome.Result)
	if err := t.store.SettleSignal(ctx, signal.ID, outcome.Result, profitLoss); err != nil {
		return false, err
	}

	t.logger.InfoContext(ctx, "Signal resolved",
		"signal_id", signal.ID, "result", outcome.Result,
		"profit_loss", profitLoss, "explanation", outcome.Explanation)

	if t.notifier != nil {
		if err := t.notifier.NotifyResult(ctx, signal, match, outcome.Result, profitLoss); err != nil {
			t.logger.ErrorContext(ctx, "Error sending result notification", "signal_id", signal.ID, "error", err)
		}
	}
	return true, nil
}

// refreshMatch updates the stored match from the API: event view first,
// then a finished-matches sweep over recent days. Returns whether fresh
// data was found; the match struct is updated in place either way.
func (t *Tracker) refreshMatch(ctx context.Context, match *database.Match) (bool, error) {
	raw, err := t.api.MatchDetails(ctx, match.APIMatchID)
	if err != nil {
		t.logger.WarnContext(ctx, "Match details lookup failed",
			"api_match_id", match.APIMatchID, "error", err)
	}

	if raw == nil {
		raw = t.findFinished(ctx, match)
	}
	if raw == nil {
		return false, nil
	}

	parsed, err := sportsapi.ParseMatch(raw)
	if err != nil {
		return false, fmt.Errorf("failed to parse refreshed match: %w", err)
	}

	match.Minute = parsed.Minute
	match.Status = normalizeStatus(parsed.Status)
	match.HomeScore = parsed.HomeScore
	match.AwayScore = parsed.AwayScore
	if parsed.Stats != nil {
		match.Stats = parsed.Stats.Map()
	}

	if err := t.store.UpsertMatch(ctx, match); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Tracker) findFinished(ctx context.Context, match *database.Match) json.RawMessage {
	for daysBack := 0; daysBack <= t.cfg.FinishedDaysBack; daysBack++ {
		day := time.Now().AddDate(0, 0, -daysBack)

		finished, err := t.api.FinishedMatches(ctx, day)
		if err != nil {
			t.logger.WarnContext(ctx, "Finished matches lookup failed", "day", day.Format("2006-01-02"), "error", err)
			continue
		}

		for _, raw := range finished {
			parsed, err := sportsapi.ParseMatch(raw)
			if err != nil {
				continue
			}
			if parsed.ID == match.APIMatchID ||
				(parsed.HomeTeam == match.HomeTeam && parsed.AwayTeam == match.AwayTeam) {
				t.logger.InfoContext(ctx, "Found match in finished results",
					"api_match_id", match.APIMatchID, "day", day.Format("2006-01-02"))
				return raw
			}
		}
	}
	return nil
}

// b365 reports finished matches with a numeric status; the tracker only
// cares about "is this over".
func normalizeStatus(status string) string {
	switch strings.ToLower(status) {
	case "3", "ft", "finished", "ended":
		return database.StatusFinished
	default:
		return status
	}
}

// Outcome is the settlement decision for one signal.
type Outcome struct {
	Resolvable  bool
	Result      string
	Explanation string
}

func matchFinished(match database.Match, minute int) bool {
	return match.Status == database.StatusFinished || match.Status == database.StatusFT || minute >= 90
}

// Resolve decides whether a signal is settleable given the latest match
// state, and with what result. Unresolvable signals stay pending.
func Resolve(signal database.Signal, match database.Match, currentMinute int) Outcome {
	elapsed := currentMinute - signal.TriggerMinute
	totalGoals := match.HomeScore + match.AwayScore

	switch signal.SignalType {
	case strategy.TypeOver15, strategy.TypeOver25, strategy.TypeOver35:
		target := overTarget(signal.SignalType)
		if float64(totalGoals) > target {
			return Outcome{true, database.ResultWin,
				fmt.Sprintf("Target %.1f exceeded with %d goals", target, totalGoals)}
		}
		if matchFinished(match, currentMinute) {
			return Outcome{true, database.ResultLoss,
				fmt.Sprintf("Under %.1f: only %d goals scored", target, totalGoals)}
		}

	case strategy.TypeUnder25:
		if totalGoals >= 3 {
			return Outcome{true, database.ResultLoss,
				fmt.Sprintf("Over 2.5 reached with %d goals", totalGoals)}
		}
		if matchFinished(match, currentMinute) {
			return Outcome{true, database.ResultWin,
				fmt.Sprintf("Under 2.5 held: %d goals", totalGoals)}
		}

	case strategy.TypeBTTS:
		if match.HomeScore > 0 && match.AwayScore > 0 {
			return Outcome{true, database.ResultWin, "Both teams scored"}
		}
		if matchFinished(match, currentMinute) {
			return Outcome{true, database.ResultLoss,
				fmt.Sprintf("BTTS failed: %d-%d", match.HomeScore, match.AwayScore)}
		}

	case strategy.TypeFirstGoal, strategy.TypeNextGoal:
		if elapsed >= 15 {
			leading := signal.TriggerMetrics.String("leading_team", "home")
			if (leading == "home" && match.HomeScore > match.AwayScore) ||
				(leading == "away" && match.AwayScore > match.HomeScore) {
				return Outcome{true, database.ResultWin,
					fmt.Sprintf("%s team goal prediction correct", leading)}
			}
			return Outcome{true, database.ResultLoss, "Goal prediction incorrect"}
		}

	case strategy.TypeNextGoalAway:
		if elapsed >= 15 {
			if match.AwayScore > match.HomeScore {
				return Outcome{true, database.ResultWin, "Away team goal prediction correct"}
			}
			return Outcome{true, database.ResultLoss, "Goal prediction incorrect"}
		}

	case strategy.TypeLateGoal:
		if matchFinished(match, currentMinute) {
			advantaged := signal.TriggerMetrics.String("advantage_team", "home")
			if totalGoals > 0 &&
				((advantaged == "home" && match.HomeScore > 0) ||
					(advantaged == "away" && match.AwayScore > 0)) {
				return Outcome{true, database.ResultWin,
					fmt.Sprintf("Late goal by advantaged team (%s)", advantaged)}
			}
			return Outcome{true, database.ResultLoss,
				fmt.Sprintf("No late goal by advantaged team (%s)", advantaged)}
		}

	case strategy.TypeTeamToScore:
		team := signal.TriggerMetrics.String("efficient_team", "home")
		if (team == "home" && match.HomeScore > 0) || (team == "away" && match.AwayScore > 0) {
			return Outcome{true, database.ResultWin,
				fmt.Sprintf("%s team scored as predicted", team)}
		}
		if matchFinished(match, currentMinute) {
			return Outcome{true, database.ResultLoss,
				fmt.Sprintf("Predicted team (%s) did not score", team)}
		}

	case strategy.TypePerformance:
		if elapsed >= 20 {
			team := signal.TriggerMetrics.String("trending_team", "home")
			switch {
			case match.HomeScore == match.AwayScore:
				return Outcome{true, database.ResultPush, "Draw, neutral result"}
			case (team == "home" && match.HomeScore > match.AwayScore) ||
				(team == "away" && match.AwayScore > match.HomeScore):
				return Outcome{true, database.ResultWin,
					fmt.Sprintf("%s team performance prediction correct", team)}
			default:
				return Outcome{true, database.ResultLoss,
					fmt.Sprintf("%s team performance prediction incorrect", team)}
			}
		}
	}

	return Outcome{Resolvable: false, Result: database.ResultPending,
		Explanation: "Insufficient time or data to resolve"}
}

func overTarget(signalType string) float64 {
	parts := strings.Split(signalType, "_")
	if len(parts) != 2 {
		return 2.5
	}
	target, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 2.5
	}
	return target
}

// ProfitLoss computes the settled stake outcome: (odds-1)*stake on a win,
// -stake on a loss, zero on a push.
func ProfitLoss(signal database.Signal, result string) float64 {
	stake := signal.Stake
	odds := signal.Odds
	if odds == 0 {
		odds = defaultOdds
	}

	var profit float64
	switch result {
	case database.ResultWin:
		profit = (odds - 1) * stake
	case database.ResultLoss:
		profit = -stake
	}
	return math.Round(profit*100) / 100
}
