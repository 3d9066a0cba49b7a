package strategy

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/betbog/betbog/internal/metrics"
)

// minSignalConfidence is the engine-wide floor below which signals are
// discarded regardless of per-strategy thresholds.
const minSignalConfidence = 0.5

// Config holds the tunable thresholds for one strategy. Extra carries
// strategy-specific knobs (stability_factor, gradient_factor, ...).
type Config struct {
	Threshold     float64
	MinConfidence float64
	Extra         map[string]float64
}

func (c Config) extra(key string, fallback float64) float64 {
	if v, ok := c.Extra[key]; ok {
		return v
	}
	return fallback
}

// MatchState is the score context strategies need beyond the metrics.
type MatchState struct {
	HomeScore int
	AwayScore int
}

func (m MatchState) totalGoals() int { return m.HomeScore + m.AwayScore }

type strategyFunc func(cfg Config, snap metrics.Snapshot, state MatchState, minute int) *Signal

// Engine runs all registered strategies against a metrics snapshot.
// Threshold configs can be swapped at runtime by the optimizer.
type Engine struct {
	mu      sync.RWMutex
	configs map[string]Config
	logger  *slog.Logger
	order   []string
	funcs   map[string]strategyFunc
}

// NewEngine creates an engine with the given per-strategy configs.
// Strategies without a config entry run with zero thresholds.
func NewEngine(configs map[string]Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfgCopy := make(map[string]Config, len(configs))
	for name, cfg := range configs {
		cfgCopy[name] = cfg
	}

	return &Engine{
		configs: cfgCopy,
		logger:  logger.With("component", "strategy"),
		order: []string{
			"dxg_spike",
			"under_2_5_goals",
			"momentum_shift",
			"tiredness_advantage",
			"shots_efficiency",
			"wave_pattern",
			"gradient_breakout",
			"stability_disruption",
			"next_goal_away",
		},
		funcs: map[string]strategyFunc{
			"dxg_spike":            analyzeDxgSpike,
			"under_2_5_goals":      analyzeUnder25,
			"momentum_shift":       analyzeMomentumShift,
			"tiredness_advantage":  analyzeTirednessAdvantage,
			"shots_efficiency":     analyzeShotsEfficiency,
			"wave_pattern":         analyzeWavePattern,
			"gradient_breakout":    analyzeGradientBreakout,
			"stability_disruption": analyzeStabilityDisruption,
			"next_goal_away":       analyzeNextGoalAway,
		},
	}
}

// Strategies returns the registered strategy names in evaluation order.
func (e *Engine) Strategies() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Configs returns a copy of the current per-strategy configs.
func (e *Engine) Configs() map[string]Config {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]Config, len(e.configs))
	for name, cfg := range e.configs {
		out[name] = cfg
	}
	return out
}

// MinConfidence returns the configured confidence floor for a strategy.
func (e *Engine) MinConfidence(strategyName string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.configs[strategyName].MinConfidence
}

// UpdateConfig merges new threshold values into a strategy's config.
// Recognized keys are "threshold" and "min_confidence"; everything else
// lands in Extra.
func (e *Engine) UpdateConfig(strategyName string, values map[string]float64) error {
	if _, ok := e.funcs[strategyName]; !ok {
		return fmt.Errorf("unknown strategy %q", strategyName)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.configs[strategyName]
	for key, value := range values {
		switch key {
		case "threshold":
			cfg.Threshold = value
		case "min_confidence":
			cfg.MinConfidence = value
		default:
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]float64)
			}
			cfg.Extra[key] = value
		}
	}
	e.configs[strategyName] = cfg

	e.logger.Info("Strategy config updated", "strategy", strategyName, "values", values)
	return nil
}

// Evaluate runs every strategy against the snapshot and returns the
// signals clearing the engine-wide confidence floor.
func (e *Engine) Evaluate(snap metrics.Snapshot, state MatchState, minute int) []Signal {
	e.mu.RLock()
	configs := make(map[string]Config, len(e.configs))
	for name, cfg := range e.configs {
		configs[name] = cfg
	}
	e.mu.RUnlock()

	var signals []Signal
	for _, name := range e.order {
		result := e.funcs[name](configs[name], snap, state, minute)
		if result == nil || result.Confidence <= minSignalConfidence {
			continue
		}
		signals = append(signals, *result)
		e.logger.Debug("Signal generated",
			"strategy", result.Strategy, "type", result.Type, "confidence", result.Confidence)
	}
	return signals
}

// analyzeDxgSpike reacts to elevated total dxG after the 20th minute,
// picking the market by dxG level and home/away imbalance.
func analyzeDxgSpike(cfg Config, snap metrics.Snapshot, _ MatchState, minute int) *Signal {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.15
	}
	minConfidence := cfg.MinConfidence
	if minConfidence == 0 {
		minConfidence = 0.7
	}

	totalDxg := snap.DxgHome + snap.DxgAway
	imbalance := math.Abs(snap.DxgHome - snap.DxgAway)

	if totalDxg <= threshold || minute <= 20 {
		return nil
	}

	var signalType, prediction string
	var confidence float64
	switch {
	case totalDxg > 1.5 && minute < 70:
		signalType = TypeOver25
		prediction = "Over 2.5 goals"
		confidence = math.Min(0.9, 0.5+(totalDxg-1.5)*0.3)
	case totalDxg > 1.0 && minute < 60:
		signalType = TypeOver15
		prediction = "Over 1.5 goals"
		confidence = math.Min(0.85, 0.5+(totalDxg-1.0)*0.4)
	case totalDxg > 0.8 && imbalance > 0.3:
		signalType = TypeBTTS
		prediction = "Both teams to score"
		confidence = math.Min(0.8, 0.5+imbalance*0.5)
	default:
		return nil
	}

	momentumFactor := (math.Abs(snap.MomentumHome) + math.Abs(snap.MomentumAway)) * 0.1
	finalConfidence := confidence * timeConfidenceFactor(minute) * (1 + momentumFactor)
	if finalConfidence < minConfidence {
		return nil
	}

	return &Signal{
		Strategy:      "dxg_spike",
		Type:          signalType,
		Confidence:    round3(finalConfidence),
		Prediction:    prediction,
		ThresholdUsed: threshold,
		Reasoning:     fmt.Sprintf("dxG spike detected: %.2f total, imbalance: %.2f", totalDxg, imbalance),
		TriggerMetrics: map[string]any{
			"total_dxg":     totalDxg,
			"dxg_imbalance": imbalance,
			"minute":        minute,
		},
		RecommendedOdds: recommendedOdds(finalConfidence),
		StakeMultiplier: math.Min(2.0, finalConfidence+0.5),
	}
}

// analyzeUnder25 fires on low attacking activity combined with low dxG.
func analyzeUnder25(cfg Config, snap metrics.Snapshot, _ MatchState, minute int) *Signal {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.6
	}
	minConfidence := cfg.MinConfidence
	if minConfidence == 0 {
		minConfidence = 0.65
	}

	totalAttacks := snap.AttacksHome + snap.AttacksAway
	totalShots := snap.ShotsHome + snap.ShotsAway
	totalDxg := snap.DxgHome + snap.DxgAway

	attackingFactor := 1.0 - math.Min(1.0, (totalAttacks/20.0+totalShots/15.0)/2.0)
	dxgFactor := 1.0 - math.Min(1.0, totalDxg/2.5)

	confidence := attackingFactor*0.6 + dxgFactor*0.4
	if confidence < threshold {
		return nil
	}

	finalConfidence := confidence * timeConfidenceFactor(minute)
	if finalConfidence < minConfidence {
		return nil
	}

	return &Signal{
		Strategy:      "under_2_5_goals",
		Type:          TypeUnder25,
		Confidence:    round3(finalConfidence),
		Prediction:    "Under 2.5 goals",
		ThresholdUsed: threshold,
		Reasoning: fmt.Sprintf("Low attacking activity: %.0f attacks, %.0f shots, %.2f dxG",
			totalAttacks, totalShots, totalDxg),
		TriggerMetrics: map[string]any{
			"total_attacks": totalAttacks,
			"total_shots":   totalShots,
			"total_dxg":     totalDxg,
			"minute":        minute,
		},
		RecommendedOdds: recommendedOdds(finalConfidence),
		StakeMultiplier: math.Min(1.8, finalConfidence+0.3),
	}
}

// analyzeMomentumShift predicts the next scorer from a momentum gap,
// boosted when the match is unstable.
func analyzeMomentumShift(cfg Config, snap metrics.Snapshot, state MatchState, minute int) *Signal {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.25
	}
	stabilityFactor := cfg.extra("stability_factor", 0.8)

	momentumDiff := math.Abs(snap.MomentumHome - snap.MomentumAway)
	if momentumDiff <= threshold || minute <= 15 {
		return nil
	}

	leadingTeam := "home"
	if snap.MomentumAway > snap.MomentumHome {
		leadingTeam = "away"
	}
	momentumStrength := math.Max(math.Abs(snap.MomentumHome), math.Abs(snap.MomentumAway))

	baseConfidence := math.Min(0.9, 0.4+momentumStrength*0.3)
	stabilityAvg := (snap.StabilityHome + snap.StabilityAway) / 2

	multiplier := 1.0
	if stabilityAvg < stabilityFactor {
		multiplier = 1.2
	}
	finalConfidence := baseConfidence * multiplier

	var signalType, prediction string
	switch {
	case momentumStrength > 0.5 && state.totalGoals() == 0:
		signalType = TypeFirstGoal
		prediction = fmt.Sprintf("First goal by %s team", leadingTeam)
	case momentumStrength > 0.3:
		signalType = TypeNextGoal
		prediction = fmt.Sprintf("Next goal by %s team", leadingTeam)
	default:
		return nil
	}

	if finalConfidence < 0.6 {
		return nil
	}

	return &Signal{
		Strategy:      "momentum_shift",
		Type:          signalType,
		Confidence:    round3(finalConfidence),
		Prediction:    prediction,
		ThresholdUsed: threshold,
		Reasoning:     fmt.Sprintf("Momentum shift: %s team leading with %.2f", leadingTeam, momentumStrength),
		TriggerMetrics: map[string]any{
			"momentum_home": snap.MomentumHome,
			"momentum_away": snap.MomentumAway,
			"momentum_diff": momentumDiff,
			"leading_team":  leadingTeam,
		},
		RecommendedOdds: recommendedOdds(finalConfidence),
		StakeMultiplier: 1.0,
	}
}

// analyzeTirednessAdvantage looks for late-game fatigue gaps, boosted by
// a rising gradient for the fresher side.
func analyzeTirednessAdvantage(cfg Config, snap metrics.Snapshot, _ MatchState, minute int) *Signal {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.3
	}
	gradientFactor := cfg.extra("gradient_factor", 0.2)

	if minute < 60 {
		return nil
	}

	tirednessDiff := math.Abs(snap.TirednessHome - snap.TirednessAway)
	if tirednessDiff <= threshold {
		return nil
	}

	lessTired := "home"
	if snap.TirednessAway < snap.TirednessHome {
		lessTired = "away"
	}

	boost := 0.0
	if (lessTired == "home" && snap.GradientHome > gradientFactor) ||
		(lessTired == "away" && snap.GradientAway > gradientFactor) {
		boost = 0.2
	}

	finalConfidence := math.Min(0.9, 0.5+tirednessDiff+boost)
	finalConfidence += float64(minute-60) / 30 * 0.1
	if finalConfidence < 0.65 {
		return nil
	}

	return &Signal{
		Strategy:      "tiredness_advantage",
		Type:          TypeLateGoal,
		Confidence:    round3(finalConfidence),
		Prediction:    fmt.Sprintf("Late goal by %s team", lessTired),
		ThresholdUsed: threshold,
		Reasoning:     fmt.Sprintf("Tiredness advantage: %s team less tired by %.2f", lessTired, tirednessDiff),
		TriggerMetrics: map[string]any{
			"tiredness_home": snap.TirednessHome,
			"tiredness_away": snap.TirednessAway,
			"tiredness_diff": tirednessDiff,
			"advantage_team": lessTired,
		},
		RecommendedOdds: recommendedOdds(finalConfidence),
		StakeMultiplier: 1.0,
	}
}

// analyzeShotsEfficiency flags a team converting an unusually high share
// of attacks into shots, strengthened by momentum.
func analyzeShotsEfficiency(cfg Config, snap metrics.Snapshot, _ MatchState, minute int) *Signal {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.4
	}

	if minute < 25 {
		return nil
	}

	spaHome := snap.ShotsPerAttackHome
	spaAway := snap.ShotsPerAttackAway
	if spaHome <= threshold && spaAway <= threshold {
		return nil
	}

	efficientTeam := "home"
	if spaAway > spaHome {
		efficientTeam = "away"
	}
	maxEfficiency := math.Max(spaHome, spaAway)

	var confidence float64
	switch {
	case efficientTeam == "home" && math.Abs(snap.MomentumHome) > 0.2:
		confidence = 0.6 + maxEfficiency*0.5 + math.Abs(snap.MomentumHome)*0.2
	case efficientTeam == "away" && math.Abs(snap.MomentumAway) > 0.2:
		confidence = 0.6 + maxEfficiency*0.5 + math.Abs(snap.MomentumAway)*0.2
	default:
		confidence = 0.5 + maxEfficiency*0.3
	}

	finalConfidence := math.Min(0.88, confidence)
	if finalConfidence < 0.6 {
		return nil
	}

	prediction := "Home team to score"
	if efficientTeam == "away" {
		prediction = "Away team to score"
	}

	return &Signal{
		Strategy:      "shots_efficiency",
		Type:          TypeTeamToScore,
		Confidence:    round3(finalConfidence),
		Prediction:    prediction,
		ThresholdUsed: threshold,
		Reasoning: fmt.Sprintf("High shots efficiency: %s team %.2f shots/attack",
			efficientTeam, maxEfficiency),
		TriggerMetrics: map[string]any{
			"spa_home":       spaHome,
			"spa_away":       spaAway,
			"efficient_team": efficientTeam,
			"max_efficiency": maxEfficiency,
		},
		RecommendedOdds: recommendedOdds(finalConfidence),
		StakeMultiplier: 1.0,
	}
}

// analyzeWavePattern treats high intensity variance as a volatile,
// goal-rich match while goals remain on the table.
func analyzeWavePattern(cfg Config, snap metrics.Snapshot, state MatchState, minute int) *Signal {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 2.0
	}

	if snap.WaveAmplitude <= threshold || minute <= 20 {
		return nil
	}
	if state.totalGoals() >= 2 {
		return nil
	}

	confidence := math.Min(0.8, 0.55+(snap.WaveAmplitude-threshold)*0.1)

	signalType := TypeOver25
	prediction := "Over 2.5 goals"
	if state.totalGoals() > 1 {
		signalType = TypeOver35
		prediction = "Over 3.5 goals"
	}

	return &Signal{
		Strategy:      "wave_pattern",
		Type:          signalType,
		Confidence:    round3(confidence),
		Prediction:    prediction,
		ThresholdUsed: threshold,
		Reasoning:     fmt.Sprintf("High wave amplitude %.2f indicates volatile match", snap.WaveAmplitude),
		TriggerMetrics: map[string]any{
			"wave_amplitude": snap.WaveAmplitude,
			"current_goals":  state.totalGoals(),
			"minute":         minute,
		},
		RecommendedOdds: recommendedOdds(confidence),
		StakeMultiplier: 1.0,
	}
}

// analyzeGradientBreakout fires on a strong upward shot trend for either
// side.
func analyzeGradientBreakout(cfg Config, snap metrics.Snapshot, _ MatchState, _ int) *Signal {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.3
	}

	if math.Abs(snap.GradientHome) <= threshold && math.Abs(snap.GradientAway) <= threshold {
		return nil
	}

	trendingTeam := "home"
	gradientStrength := math.Abs(snap.GradientHome)
	trendingUp := snap.GradientHome > 0
	if math.Abs(snap.GradientAway) > math.Abs(snap.GradientHome) {
		trendingTeam = "away"
		gradientStrength = math.Abs(snap.GradientAway)
		trendingUp = snap.GradientAway > 0
	}

	if !trendingUp {
		return nil
	}

	confidence := math.Min(0.85, 0.55+gradientStrength*0.4)

	prediction := "Home team strong trend"
	if trendingTeam == "away" {
		prediction = "Away team strong trend"
	}

	return &Signal{
		Strategy:      "gradient_breakout",
		Type:          TypePerformance,
		Confidence:    round3(confidence),
		Prediction:    prediction,
		ThresholdUsed: threshold,
		Reasoning:     fmt.Sprintf("Strong upward gradient %.2f for %s", gradientStrength, trendingTeam),
		TriggerMetrics: map[string]any{
			"gradient_home":     snap.GradientHome,
			"gradient_away":     snap.GradientAway,
			"trending_team":     trendingTeam,
			"gradient_strength": gradientStrength,
		},
		RecommendedOdds: recommendedOdds(confidence),
		StakeMultiplier: 1.0,
	}
}

// analyzeStabilityDisruption reads low average stability after the 30th
// minute as chaos, picking the market by the current score.
func analyzeStabilityDisruption(cfg Config, snap metrics.Snapshot, state MatchState, minute int) *Signal {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.3
	}

	avgStability := (snap.StabilityHome + snap.StabilityAway) / 2
	if avgStability >= threshold || minute <= 30 {
		return nil
	}

	chaosLevel := 1.0 - avgStability
	confidence := 0.5 + chaosLevel*0.3

	var signalType, prediction string
	switch state.totalGoals() {
	case 0:
		signalType = TypeBTTS
		prediction = "Both teams to score"
	case 1:
		signalType = TypeOver25
		prediction = "Over 2.5 goals"
	default:
		signalType = TypeOver35
		prediction = "Over 3.5 goals"
	}

	finalConfidence := math.Min(0.8, confidence)
	if finalConfidence < 0.6 {
		return nil
	}

	return &Signal{
		Strategy:      "stability_disruption",
		Type:          signalType,
		Confidence:    round3(finalConfidence),
		Prediction:    prediction,
		ThresholdUsed: threshold,
		Reasoning:     fmt.Sprintf("Low stability %.2f indicates chaotic match", avgStability),
		TriggerMetrics: map[string]any{
			"stability_home": snap.StabilityHome,
			"stability_away": snap.StabilityAway,
			"avg_stability":  avgStability,
			"chaos_level":    chaosLevel,
		},
		RecommendedOdds: recommendedOdds(finalConfidence),
		StakeMultiplier: 1.0,
	}
}

// analyzeNextGoalAway scores away-team pressure additively across
// momentum, efficiency, attack share, and shot count.
func analyzeNextGoalAway(cfg Config, snap metrics.Snapshot, _ MatchState, minute int) *Signal {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.7
	}
	minConfidence := cfg.MinConfidence
	if minConfidence == 0 {
		minConfidence = 0.65
	}

	awayMomentum := snap.MomentumAway
	awayEfficiency := snap.ShotsPerAttackAway
	momentumDiff := snap.MomentumAway - snap.MomentumHome

	confidence := 0.0
	if awayMomentum > 0.3 && momentumDiff > 0.15 {
		confidence += 0.4
	}
	if awayEfficiency > 0.3 {
		confidence += 0.3
	}
	if snap.AttacksAway > snap.AttacksHome*1.2 {
		confidence += 0.2
	}
	if snap.ShotsAway > snap.ShotsHome {
		confidence += 0.1
	}

	if confidence < threshold {
		return nil
	}

	finalConfidence := confidence * timeConfidenceFactor(minute)
	if finalConfidence < minConfidence {
		return nil
	}

	return &Signal{
		Strategy:      "next_goal_away",
		Type:          TypeNextGoalAway,
		Confidence:    round3(finalConfidence),
		Prediction:    "Next goal: away team",
		ThresholdUsed: threshold,
		Reasoning: fmt.Sprintf("Away momentum: %.2f, efficiency: %.2f",
			awayMomentum, awayEfficiency),
		TriggerMetrics: map[string]any{
			"away_momentum":   awayMomentum,
			"away_efficiency": awayEfficiency,
			"momentum_diff":   momentumDiff,
			"minute":          minute,
		},
		RecommendedOdds: recommendedOdds(finalConfidence),
		StakeMultiplier: math.Min(1.5, finalConfidence+0.2),
	}
}
