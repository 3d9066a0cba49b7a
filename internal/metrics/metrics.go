// Package metrics derives per-minute match metrics (dxG, gradients, wave
// amplitude, tiredness, momentum, stability) from raw match statistics and
// their stored history.
package metrics

import (
	"math"

	"github.com/betbog/betbog/internal/sportsapi"
)

const maxDxg = 3.0

// Sample is one historical observation of a match's raw counters, used for
// the windowed metrics (gradient, wave, momentum, stability).
type Sample struct {
	Minute      int
	ShotsHome   float64
	ShotsAway   float64
	AttacksHome float64
	AttacksAway float64
}

// Snapshot holds all derived metrics for a match minute, plus the raw
// statistics the strategies read directly.
type Snapshot struct {
	DxgHome            float64
	DxgAway            float64
	GradientHome       float64
	GradientAway       float64
	WaveAmplitude      float64
	TirednessHome      float64
	TirednessAway      float64
	MomentumHome       float64
	MomentumAway       float64
	StabilityHome      float64
	StabilityAway      float64
	ShotsPerAttackHome float64
	ShotsPerAttackAway float64

	ShotsHome      float64
	ShotsAway      float64
	AttacksHome    float64
	AttacksAway    float64
	DangerousHome  float64
	DangerousAway  float64
	PossessionHome float64
	PossessionAway float64
	CornersHome    float64
	CornersAway    float64
	GoalsHome      int
	GoalsAway      int
	Minute         int
}

// Map returns the derived metrics as a generic map, stored alongside each
// signal as its trigger context.
func (s Snapshot) Map() map[string]any {
	return map[string]any{
		"dxg_home":              s.DxgHome,
		"dxg_away":              s.DxgAway,
		"gradient_home":         s.GradientHome,
		"gradient_away":         s.GradientAway,
		"wave_amplitude":        s.WaveAmplitude,
		"tiredness_home":        s.TirednessHome,
		"tiredness_away":        s.TirednessAway,
		"momentum_home":         s.MomentumHome,
		"momentum_away":         s.MomentumAway,
		"stability_home":        s.StabilityHome,
		"stability_away":        s.StabilityAway,
		"shots_per_attack_home": s.ShotsPerAttackHome,
		"shots_per_attack_away": s.ShotsPerAttackAway,
	}
}

// Compute derives all metrics for the current match state. history must be
// in ascending minute order; windowed metrics degrade gracefully to zero
// (stability to 1.0) when history is too short.
func Compute(stats sportsapi.Stats, history []Sample, minute, goalsHome, goalsAway int) Snapshot {
	snap := Snapshot{
		ShotsHome:      stats.ShotsHome,
		ShotsAway:      stats.ShotsAway,
		AttacksHome:    stats.AttacksHome,
		AttacksAway:    stats.AttacksAway,
		DangerousHome:  stats.DangerousAttacksHome,
		DangerousAway:  stats.DangerousAttacksAway,
		PossessionHome: stats.PossessionHome,
		PossessionAway: stats.PossessionAway,
		CornersHome:    stats.CornersHome,
		CornersAway:    stats.CornersAway,
		GoalsHome:      goalsHome,
		GoalsAway:      goalsAway,
		Minute:         minute,
	}

	snap.DxgHome, snap.DxgAway = computeDxg(stats, minute)
	snap.GradientHome, snap.GradientAway = computeGradient(history, minute)
	snap.WaveAmplitude = computeWaveAmplitude(history)
	snap.TirednessHome, snap.TirednessAway = computeTiredness(stats, minute)
	snap.MomentumHome, snap.MomentumAway = computeMomentum(history, minute)
	snap.StabilityHome, snap.StabilityAway = computeStability(history)
	snap.ShotsPerAttackHome = shotsPerAttack(stats.ShotsHome, stats.AttacksHome)
	snap.ShotsPerAttackAway = shotsPerAttack(stats.ShotsAway, stats.AttacksAway)

	return snap
}

// computeDxg derives expected goals from shot quality, a time-band
// modifier, and a pressure factor (shots per projected 90 minutes).
func computeDxg(stats sportsapi.Stats, minute int) (float64, float64) {
	qualityHome := shotQuality(stats.ShotsHome, stats.AttacksHome, stats.DangerousAttacksHome)
	qualityAway := shotQuality(stats.ShotsAway, stats.AttacksAway, stats.DangerousAttacksAway)

	modifier := timeModifier(minute)

	elapsed := math.Max(float64(minute), 1)
	pressureHome := stats.ShotsHome / elapsed * 90
	pressureAway := stats.ShotsAway / elapsed * 90

	dxgHome := qualityHome * modifier * (1 + pressureHome*0.1)
	dxgAway := qualityAway * modifier * (1 + pressureAway*0.1)

	return round3(dxgHome), round3(dxgAway)
}

func shotQuality(shots, attacks, dangerous float64) float64 {
	if attacks == 0 {
		return 0
	}
	conversion := shots / math.Max(attacks, 1)
	dangerRatio := dangerous / math.Max(attacks, 1)
	quality := (conversion*0.6 + dangerRatio*0.4) * shots * 0.15
	return math.Min(quality, maxDxg)
}

func timeModifier(minute int) float64 {
	switch {
	case minute < 15:
		return 0.8
	case minute < 30:
		return 1.0
	case minute < 60:
		return 1.1
	case minute < 75:
		return 1.0
	default:
		return 1.2
	}
}

// computeGradient fits a least-squares slope over shot counts in the last
// 10 minutes of history.
func computeGradient(history []Sample, minute int) (float64, float64) {
	if len(history) < 3 {
		return 0, 0
	}

	var homeShots, awayShots []float64
	for _, s := range history {
		if s.Minute >= minute-10 {
			homeShots = append(homeShots, s.ShotsHome)
			awayShots = append(awayShots, s.ShotsAway)
		}
	}
	if len(homeShots) < 2 {
		return 0, 0
	}
	return round3(slope(homeShots)), round3(slope(awayShots))
}

func slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	xMean := float64(n-1) / 2
	var yMean float64
	for _, v := range values {
		yMean += v
	}
	yMean /= float64(n)

	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// computeWaveAmplitude measures match intensity swings as the standard
// deviation of shots + 0.3*attacks across history.
func computeWaveAmplitude(history []Sample) float64 {
	if len(history) < 5 {
		return 0
	}

	intensities := make([]float64, 0, len(history))
	for _, s := range history {
		shots := s.ShotsHome + s.ShotsAway
		attacks := s.AttacksHome + s.AttacksAway
		intensities = append(intensities, shots+attacks*0.3)
	}
	return round3(stddev(intensities))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// computeTiredness estimates accumulated workload from possession-weighted
// attack rate scaled by elapsed match time.
func computeTiredness(stats sportsapi.Stats, minute int) (float64, float64) {
	elapsed := math.Max(float64(minute), 1)
	activityHome := stats.AttacksHome / elapsed * 90
	activityAway := stats.AttacksAway / elapsed * 90

	workloadHome := stats.PossessionHome * activityHome / 100
	workloadAway := stats.PossessionAway * activityAway / 100

	timeFactor := math.Min(float64(minute)/90, 1.0)

	return round3(workloadHome * timeFactor * 0.01), round3(workloadAway * timeFactor * 0.01)
}

// computeMomentum is the attack-count delta over the last 5-minute window,
// normalized by the window's elapsed minutes.
func computeMomentum(history []Sample, minute int) (float64, float64) {
	if len(history) < 4 {
		return 0, 0
	}

	var window []Sample
	for _, s := range history {
		if s.Minute >= minute-5 {
			window = append(window, s)
		}
	}
	if len(window) < 2 {
		return 0, 0
	}

	first, last := window[0], window[len(window)-1]
	elapsed := math.Max(float64(last.Minute-first.Minute), 1)

	momentumHome := (last.AttacksHome - first.AttacksHome) / elapsed
	momentumAway := (last.AttacksAway - first.AttacksAway) / elapsed

	return round3(momentumHome), round3(momentumAway)
}

// computeStability is 1 minus the coefficient of variation of attack
// counts, floored at 0. Short history reads as fully stable.
func computeStability(history []Sample) (float64, float64) {
	if len(history) < 3 {
		return 1.0, 1.0
	}

	home := make([]float64, 0, len(history))
	away := make([]float64, 0, len(history))
	for _, s := range history {
		home = append(home, s.AttacksHome)
		away = append(away, s.AttacksAway)
	}

	stabilityHome := math.Max(1.0-coefficientOfVariation(home), 0)
	stabilityAway := math.Max(1.0-coefficientOfVariation(away), 0)

	return round3(stabilityHome), round3(stabilityAway)
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}
	return stddev(values) / mean
}

func shotsPerAttack(shots, attacks float64) float64 {
	if attacks == 0 {
		return 0
	}
	return round3(shots / attacks)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
