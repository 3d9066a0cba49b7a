package strategy

import (
	"math"
	"testing"

	"github.com/betbog/betbog/internal/metrics"
)

func TestTimeConfidenceFactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		minute int
		want   float64
	}{
		{5, 0.7},
		{19, 0.7},
		{20, 1.0},
		{44, 1.0},
		{45, 0.9},
		{69, 0.9},
		{70, 1.1},
		{90, 1.1},
	}
	for _, tc := range tests {
		if got := timeConfidenceFactor(tc.minute); got != tc.want {
			t.Errorf("timeConfidenceFactor(%d) = %v, want %v", tc.minute, got, tc.want)
		}
	}
}

func TestRecommendedOdds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		confidence float64
		want       float64
	}{
		{"zero confidence", 0, 0},
		{"standard margin", 0.5, 2.2},
		{"boundary keeps standard margin", 0.8, 1.38},
		{"high confidence margin", 0.9, 1.28},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := recommendedOdds(tc.confidence); got != tc.want {
				t.Errorf("recommendedOdds(%v) = %v, want %v", tc.confidence, got, tc.want)
			}
		})
	}
}

func TestAnalyzeDxgSpike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snap     metrics.Snapshot
		minute   int
		wantNil  bool
		wantType string
	}{
		{
			name:    "too early",
			snap:    metrics.Snapshot{DxgHome: 1.5, DxgAway: 1.0},
			minute:  18,
			wantNil: true,
		},
		{
			name:    "below threshold",
			snap:    metrics.Snapshot{DxgHome: 0.05, DxgAway: 0.05},
			minute:  40,
			wantNil: true,
		},
		{
			name:     "high total dxg before 70th minute",
			snap:     metrics.Snapshot{DxgHome: 1.4, DxgAway: 0.9},
			minute:   40,
			wantType: TypeOver25,
		},
		{
			name:     "moderate total dxg with momentum before 60th minute",
			snap:     metrics.Snapshot{DxgHome: 1.0, DxgAway: 0.45, MomentumHome: 0.5, MomentumAway: 0.5},
			minute:   40,
			wantType: TypeOver15,
		},
		{
			name:     "imbalanced dxg suggests btts",
			snap:     metrics.Snapshot{DxgHome: 0.85, DxgAway: 0.1},
			minute:   75,
			wantType: TypeBTTS,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sig := analyzeDxgSpike(Config{}, tc.snap, MatchState{}, tc.minute)
			if tc.wantNil {
				if sig != nil {
					t.Fatalf("expected no signal, got %+v", sig)
				}
				return
			}
			if sig == nil {
				t.Fatal("expected a signal, got nil")
			}
			if sig.Type != tc.wantType {
				t.Errorf("signal type = %q, want %q", sig.Type, tc.wantType)
			}
			if sig.Strategy != "dxg_spike" {
				t.Errorf("strategy = %q, want dxg_spike", sig.Strategy)
			}
			if sig.Confidence <= 0 || sig.RecommendedOdds <= 1 {
				t.Errorf("implausible confidence %v or odds %v", sig.Confidence, sig.RecommendedOdds)
			}
		})
	}
}

func TestAnalyzeUnder25(t *testing.T) {
	t.Parallel()

	t.Run("quiet match fires", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{AttacksHome: 3, AttacksAway: 2, ShotsHome: 1, ShotsAway: 0}
		sig := analyzeUnder25(Config{}, snap, MatchState{}, 40)
		if sig == nil {
			t.Fatal("expected a signal for a quiet match")
		}
		if sig.Type != TypeUnder25 {
			t.Errorf("signal type = %q, want %q", sig.Type, TypeUnder25)
		}
	})

	t.Run("busy match stays silent", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{
			AttacksHome: 40, AttacksAway: 35, ShotsHome: 9, ShotsAway: 7,
			DxgHome: 1.5, DxgAway: 1.2,
		}
		if sig := analyzeUnder25(Config{}, snap, MatchState{}, 40); sig != nil {
			t.Fatalf("expected no signal, got %+v", sig)
		}
	})
}

func TestAnalyzeMomentumShift(t *testing.T) {
	t.Parallel()

	t.Run("strong away momentum at 0-0 predicts first goal", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{MomentumHome: 0.1, MomentumAway: 0.9, StabilityHome: 0.5, StabilityAway: 0.5}
		sig := analyzeMomentumShift(Config{}, snap, MatchState{}, 30)
		if sig == nil {
			t.Fatal("expected a signal")
		}
		if sig.Type != TypeFirstGoal {
			t.Errorf("signal type = %q, want %q", sig.Type, TypeFirstGoal)
		}
		if team := sig.TriggerMetrics["leading_team"]; team != "away" {
			t.Errorf("leading_team = %v, want away", team)
		}
	})

	t.Run("moderate momentum with goals predicts next goal", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{MomentumHome: 0.45, MomentumAway: 0.05, StabilityHome: 0.4, StabilityAway: 0.4}
		sig := analyzeMomentumShift(Config{}, snap, MatchState{HomeScore: 1}, 50)
		if sig == nil {
			t.Fatal("expected a signal")
		}
		if sig.Type != TypeNextGoal {
			t.Errorf("signal type = %q, want %q", sig.Type, TypeNextGoal)
		}
	})

	t.Run("early minutes stay silent", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{MomentumHome: 1.0}
		if sig := analyzeMomentumShift(Config{}, snap, MatchState{}, 10); sig != nil {
			t.Fatalf("expected no signal, got %+v", sig)
		}
	})
}

func TestAnalyzeTirednessAdvantage(t *testing.T) {
	t.Parallel()

	t.Run("before the 60th minute stays silent", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{TirednessHome: 0.9, TirednessAway: 0.1}
		if sig := analyzeTirednessAdvantage(Config{}, snap, MatchState{}, 55); sig != nil {
			t.Fatalf("expected no signal, got %+v", sig)
		}
	})

	t.Run("late fatigue gap fires for the fresher side", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{TirednessHome: 0.8, TirednessAway: 0.2, GradientAway: 0.5}
		sig := analyzeTirednessAdvantage(Config{}, snap, MatchState{}, 80)
		if sig == nil {
			t.Fatal("expected a signal")
		}
		if sig.Type != TypeLateGoal {
			t.Errorf("signal type = %q, want %q", sig.Type, TypeLateGoal)
		}
		if team := sig.TriggerMetrics["advantage_team"]; team != "away" {
			t.Errorf("advantage_team = %v, want away", team)
		}
	})
}

func TestAnalyzeShotsEfficiency(t *testing.T) {
	t.Parallel()

	snap := metrics.Snapshot{
		ShotsPerAttackHome: 0.55,
		ShotsPerAttackAway: 0.2,
		MomentumHome:       0.4,
	}
	sig := analyzeShotsEfficiency(Config{}, snap, MatchState{}, 40)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Type != TypeTeamToScore {
		t.Errorf("signal type = %q, want %q", sig.Type, TypeTeamToScore)
	}
	if team := sig.TriggerMetrics["efficient_team"]; team != "home" {
		t.Errorf("efficient_team = %v, want home", team)
	}

	if early := analyzeShotsEfficiency(Config{}, snap, MatchState{}, 20); early != nil {
		t.Fatalf("expected no signal before the 25th minute, got %+v", early)
	}
}

func TestAnalyzeWavePattern(t *testing.T) {
	t.Parallel()

	snap := metrics.Snapshot{WaveAmplitude: 3.5}

	t.Run("volatile low-scoring match fires over", func(t *testing.T) {
		t.Parallel()

		sig := analyzeWavePattern(Config{}, snap, MatchState{}, 40)
		if sig == nil {
			t.Fatal("expected a signal")
		}
		if sig.Type != TypeOver25 {
			t.Errorf("signal type = %q, want %q", sig.Type, TypeOver25)
		}
	})

	t.Run("two goals already on the board stays silent", func(t *testing.T) {
		t.Parallel()

		if sig := analyzeWavePattern(Config{}, snap, MatchState{HomeScore: 1, AwayScore: 1}, 40); sig != nil {
			t.Fatalf("expected no signal, got %+v", sig)
		}
	})
}

func TestAnalyzeGradientBreakout(t *testing.T) {
	t.Parallel()

	t.Run("upward trend fires", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{GradientHome: 0.1, GradientAway: 0.6}
		sig := analyzeGradientBreakout(Config{}, snap, MatchState{}, 50)
		if sig == nil {
			t.Fatal("expected a signal")
		}
		if sig.Type != TypePerformance {
			t.Errorf("signal type = %q, want %q", sig.Type, TypePerformance)
		}
		if team := sig.TriggerMetrics["trending_team"]; team != "away" {
			t.Errorf("trending_team = %v, want away", team)
		}
	})

	t.Run("downward trend stays silent", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{GradientHome: -0.6, GradientAway: 0.1}
		if sig := analyzeGradientBreakout(Config{}, snap, MatchState{}, 50); sig != nil {
			t.Fatalf("expected no signal, got %+v", sig)
		}
	})
}

func TestAnalyzeStabilityDisruption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		state    MatchState
		wantType string
	}{
		{"goalless chaos suggests btts", MatchState{}, TypeBTTS},
		{"single goal suggests over 2.5", MatchState{HomeScore: 1}, TypeOver25},
		{"two goals suggest over 3.5", MatchState{HomeScore: 1, AwayScore: 1}, TypeOver35},
	}

	snap := metrics.Snapshot{StabilityHome: 0.1, StabilityAway: 0.2}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sig := analyzeStabilityDisruption(Config{}, snap, tc.state, 60)
			if sig == nil {
				t.Fatal("expected a signal")
			}
			if sig.Type != tc.wantType {
				t.Errorf("signal type = %q, want %q", sig.Type, tc.wantType)
			}
		})
	}

	t.Run("stable match stays silent", func(t *testing.T) {
		t.Parallel()

		calm := metrics.Snapshot{StabilityHome: 0.9, StabilityAway: 0.9}
		if sig := analyzeStabilityDisruption(Config{}, calm, MatchState{}, 60); sig != nil {
			t.Fatalf("expected no signal, got %+v", sig)
		}
	})
}

func TestAnalyzeNextGoalAway(t *testing.T) {
	t.Parallel()

	t.Run("away pressure on every factor fires", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{
			MomentumHome:       0.1,
			MomentumAway:       0.5,
			ShotsPerAttackAway: 0.4,
			AttacksHome:        20,
			AttacksAway:        30,
			ShotsHome:          2,
			ShotsAway:          6,
		}
		sig := analyzeNextGoalAway(Config{}, snap, MatchState{}, 40)
		if sig == nil {
			t.Fatal("expected a signal")
		}
		if sig.Type != TypeNextGoalAway {
			t.Errorf("signal type = %q, want %q", sig.Type, TypeNextGoalAway)
		}
		// All four factors contribute: 0.4 + 0.3 + 0.2 + 0.1.
		if sig.Confidence != 1.0 {
			t.Errorf("confidence = %v, want 1.0", sig.Confidence)
		}
	})

	t.Run("balanced match stays silent", func(t *testing.T) {
		t.Parallel()

		snap := metrics.Snapshot{MomentumHome: 0.3, MomentumAway: 0.3, AttacksHome: 30, AttacksAway: 30}
		if sig := analyzeNextGoalAway(Config{}, snap, MatchState{}, 40); sig != nil {
			t.Fatalf("expected no signal, got %+v", sig)
		}
	})
}

func TestEngineEvaluateAppliesFloor(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil, nil)

	// A dead match produces nothing above the confidence floor.
	signals := engine.Evaluate(metrics.Snapshot{StabilityHome: 1, StabilityAway: 1}, MatchState{}, 40)
	if len(signals) != 0 {
		t.Errorf("expected no signals for a dead match, got %d", len(signals))
	}

	active := metrics.Snapshot{
		DxgHome: 1.4, DxgAway: 0.9,
		StabilityHome: 1, StabilityAway: 1,
		AttacksHome: 40, AttacksAway: 35, ShotsHome: 9, ShotsAway: 7,
	}
	signals = engine.Evaluate(active, MatchState{}, 40)
	if len(signals) == 0 {
		t.Fatal("expected at least one signal for an active match")
	}
	for _, sig := range signals {
		if sig.Confidence <= minSignalConfidence {
			t.Errorf("signal %s confidence %v is below the engine floor", sig.Strategy, sig.Confidence)
		}
	}
}

func TestEngineUpdateConfig(t *testing.T) {
	t.Parallel()

	engine := NewEngine(map[string]Config{
		"dxg_spike": {Threshold: 0.15, MinConfidence: 0.7},
	}, nil)

	if err := engine.UpdateConfig("dxg_spike", map[string]float64{
		"threshold":      0.2,
		"min_confidence": 0.75,
		"dxg_threshold":  0.12,
	}); err != nil {
		t.Fatalf("UpdateConfig returned error: %v", err)
	}

	cfg := engine.Configs()["dxg_spike"]
	if cfg.Threshold != 0.2 || cfg.MinConfidence != 0.75 {
		t.Errorf("config after update = %+v", cfg)
	}
	if cfg.Extra["dxg_threshold"] != 0.12 {
		t.Errorf("extra key not merged, got %v", cfg.Extra)
	}
	if engine.MinConfidence("dxg_spike") != 0.75 {
		t.Errorf("MinConfidence = %v, want 0.75", engine.MinConfidence("dxg_spike"))
	}

	if err := engine.UpdateConfig("no_such_strategy", map[string]float64{"threshold": 1}); err == nil {
		t.Error("UpdateConfig should reject unknown strategies")
	}
}

func TestEngineStrategiesOrder(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil, nil)
	names := engine.Strategies()
	if len(names) != 9 {
		t.Fatalf("expected 9 strategies, got %d", len(names))
	}
	if names[0] != "dxg_spike" || names[len(names)-1] != "next_goal_away" {
		t.Errorf("unexpected strategy order: %v", names)
	}
	if math.Abs(engine.MinConfidence("missing")) != 0 {
		t.Error("MinConfidence for unknown strategy should be zero")
	}
}
