package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Signal result values.
const (
	ResultPending = "pending"
	ResultWin     = "win"
	ResultLoss    = "loss"
	ResultPush    = "push"
)

// Match statuses as reported by the sports API.
const (
	StatusLive     = "live"
	StatusFinished = "finished"
	StatusFT       = "ft"
)

// Match represents a monitored football match. It stores identity, live
// state, and the latest raw statistics payload from the sports API.
type Match struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	APIMatchID string       `db:"api_match_id"`
	HomeTeam   string       `db:"home_team"`
	AwayTeam   string       `db:"away_team"`
	League     string       `db:"league"`
	Kickoff    sql.NullTime `db:"kickoff"`
	Status     string       `db:"status"`
	Minute     int          `db:"minute"`
	HomeScore  int          `db:"home_score"`
	AwayScore  int          `db:"away_score"`

	Stats JSONMap `db:"stats"`
}

// MetricsRow is a per-minute persisted snapshot of derived and raw metrics
// for a match. The derived values feed the strategy engine; the raw values
// form the history window for gradient, momentum, and stability.
type MetricsRow struct {
	ID        int64     `db:"id"`
	MatchID   int64     `db:"match_id"`
	Minute    int       `db:"minute"`
	CreatedAt time.Time `db:"created_at"`

	DxgHome            float64 `db:"dxg_home"`
	DxgAway            float64 `db:"dxg_away"`
	GradientHome       float64 `db:"gradient_home"`
	GradientAway       float64 `db:"gradient_away"`
	WaveAmplitude      float64 `db:"wave_amplitude"`
	TirednessHome      float64 `db:"tiredness_home"`
	TirednessAway      float64 `db:"tiredness_away"`
	MomentumHome       float64 `db:"momentum_home"`
	MomentumAway       float64 `db:"momentum_away"`
	StabilityHome      float64 `db:"stability_home"`
	StabilityAway      float64 `db:"stability_away"`
	ShotsPerAttackHome float64 `db:"shots_per_attack_home"`
	ShotsPerAttackAway float64 `db:"shots_per_attack_away"`

	ShotsHome      int     `db:"shots_home"`
	ShotsAway      int     `db:"shots_away"`
	AttacksHome    int     `db:"attacks_home"`
	AttacksAway    int     `db:"attacks_away"`
	PossessionHome float64 `db:"possession_home"`
	PossessionAway float64 `db:"possession_away"`
	CornersHome    int     `db:"corners_home"`
	CornersAway    int     `db:"corners_away"`
}

// Signal represents a generated betting signal and its settlement state.
type Signal struct {
	ID        int64     `db:"id"`
	MatchID   int64     `db:"match_id"`
	CreatedAt time.Time `db:"created_at"`

	StrategyName  string  `db:"strategy_name"`
	SignalType    string  `db:"signal_type"`
	Confidence    float64 `db:"confidence"`
	ThresholdUsed float64 `db:"threshold_used"`
	TriggerMinute int     `db:"trigger_minute"`
	Prediction    string  `db:"prediction"`
	Odds          float64 `db:"odds"`

	Result     string       `db:"result"`
	ProfitLoss float64      `db:"profit_loss"`
	Stake      float64      `db:"stake"`
	ResolvedAt sql.NullTime `db:"resolved_at"`

	TriggerMetrics JSONMap `db:"trigger_metrics"`
}

// StrategyStats tracks per-strategy performance and the active threshold
// configuration (merged in by the optimizer).
type StrategyStats struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	StrategyName   string       `db:"strategy_name"`
	Config         JSONMap      `db:"config"`
	TotalSignals   int          `db:"total_signals"`
	WinningSignals int          `db:"winning_signals"`
	TotalProfit    float64      `db:"total_profit"`
	ROI            float64      `db:"roi"`
	LastOptimized  sql.NullTime `db:"last_optimized"`
}

// JSONMap stores an arbitrary JSON object in a JSONB column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errUnsupportedJSONSource
	}
	return json.Unmarshal(data, m)
}

var errUnsupportedJSONSource = errInvalidScan("unsupported source type for JSONMap")

type errInvalidScan string

func (e errInvalidScan) Error() string { return string(e) }

// Float returns the named value as a float64, or fallback when missing or
// of a non-numeric type.
func (m JSONMap) Float(key string, fallback float64) float64 {
	v, ok := m[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return fallback
		}
		return f
	default:
		return fallback
	}
}

// String returns the named value as a string, or fallback when missing.
func (m JSONMap) String(key, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return fallback
}
