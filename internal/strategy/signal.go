// Package strategy evaluates derived match metrics against a set of
// betting strategies and emits signals with confidence scores.
package strategy

import "math"

// Signal is the outcome of one strategy firing on a match snapshot.
type Signal struct {
	Strategy        string
	Type            string
	Confidence      float64
	Prediction      string
	ThresholdUsed   float64
	Reasoning       string
	TriggerMetrics  map[string]any
	RecommendedOdds float64
	StakeMultiplier float64
}

// Signal types shared with the result tracker.
const (
	TypeOver15       = "over_1.5"
	TypeOver25       = "over_2.5"
	TypeOver35       = "over_3.5"
	TypeUnder25      = "under_2_5"
	TypeBTTS         = "btts"
	TypeFirstGoal    = "first_goal"
	TypeNextGoal     = "next_goal"
	TypeNextGoalAway = "next_goal_away"
	TypeLateGoal     = "late_goal"
	TypeTeamToScore  = "team_to_score"
	TypePerformance  = "team_performance"
)

// timeConfidenceFactor scales confidence by match phase. Early minutes
// depress it; late game inflates it.
func timeConfidenceFactor(minute int) float64 {
	switch {
	case minute < 20:
		return 0.7
	case minute < 45:
		return 1.0
	case minute < 70:
		return 0.9
	default:
		return 1.1
	}
}

// recommendedOdds converts confidence to fair odds with a 10-15% safety
// margin on top.
func recommendedOdds(confidence float64) float64 {
	if confidence <= 0 {
		return 0
	}
	margin := 0.1
	if confidence > 0.8 {
		margin = 0.15
	}
	return round2(1.0 / confidence * (1 + margin))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
