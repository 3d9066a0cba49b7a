package tracker

import (
	"testing"

	"github.com/betbog/betbog/internal/database"
	"github.com/betbog/betbog/internal/strategy"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		signal     database.Signal
		match      database.Match
		minute     int
		wantDone   bool
		wantResult string
	}{
		{
			name:       "over 2.5 wins early once exceeded",
			signal:     database.Signal{SignalType: strategy.TypeOver25},
			match:      database.Match{Status: database.StatusLive, HomeScore: 2, AwayScore: 1},
			minute:     55,
			wantDone:   true,
			wantResult: database.ResultWin,
		},
		{
			name:     "over 2.5 stays pending while live",
			signal:   database.Signal{SignalType: strategy.TypeOver25},
			match:    database.Match{Status: database.StatusLive, HomeScore: 1, AwayScore: 1},
			minute:   60,
			wantDone: false,
		},
		{
			name:       "over 2.5 loses at full time",
			signal:     database.Signal{SignalType: strategy.TypeOver25},
			match:      database.Match{Status: database.StatusFinished, HomeScore: 1, AwayScore: 1},
			minute:     90,
			wantDone:   true,
			wantResult: database.ResultLoss,
		},
		{
			name:       "over 1.5 parses its own target",
			signal:     database.Signal{SignalType: strategy.TypeOver15},
			match:      database.Match{Status: database.StatusLive, HomeScore: 2, AwayScore: 0},
			minute:     40,
			wantDone:   true,
			wantResult: database.ResultWin,
		},
		{
			name:       "under 2.5 loses as soon as third goal lands",
			signal:     database.Signal{SignalType: strategy.TypeUnder25},
			match:      database.Match{Status: database.StatusLive, HomeScore: 2, AwayScore: 1},
			minute:     70,
			wantDone:   true,
			wantResult: database.ResultLoss,
		},
		{
			name:       "under 2.5 wins at full time",
			signal:     database.Signal{SignalType: strategy.TypeUnder25},
			match:      database.Match{Status: database.StatusFT, HomeScore: 1, AwayScore: 0},
			minute:     92,
			wantDone:   true,
			wantResult: database.ResultWin,
		},
		{
			name:       "btts wins once both score",
			signal:     database.Signal{SignalType: strategy.TypeBTTS},
			match:      database.Match{Status: database.StatusLive, HomeScore: 1, AwayScore: 1},
			minute:     50,
			wantDone:   true,
			wantResult: database.ResultWin,
		},
		{
			name:       "btts loses at full time with one side blank",
			signal:     database.Signal{SignalType: strategy.TypeBTTS},
			match:      database.Match{Status: database.StatusFinished, HomeScore: 3, AwayScore: 0},
			minute:     90,
			wantDone:   true,
			wantResult: database.ResultLoss,
		},
		{
			name: "next goal resolves 15 minutes after trigger",
			signal: database.Signal{
				SignalType:     strategy.TypeNextGoal,
				TriggerMinute:  40,
				TriggerMetrics: database.JSONMap{"leading_team": "away"},
			},
			match:      database.Match{Status: database.StatusLive, HomeScore: 0, AwayScore: 1},
			minute:     56,
			wantDone:   true,
			wantResult: database.ResultWin,
		},
		{
			name: "next goal still pending inside the window",
			signal: database.Signal{
				SignalType:     strategy.TypeNextGoal,
				TriggerMinute:  40,
				TriggerMetrics: database.JSONMap{"leading_team": "away"},
			},
			match:    database.Match{Status: database.StatusLive, HomeScore: 0, AwayScore: 1},
			minute:   50,
			wantDone: false,
		},
		{
			name: "next goal away wins when away leads",
			signal: database.Signal{
				SignalType:    strategy.TypeNextGoalAway,
				TriggerMinute: 30,
			},
			match:      database.Match{Status: database.StatusLive, HomeScore: 0, AwayScore: 1},
			minute:     46,
			wantDone:   true,
			wantResult: database.ResultWin,
		},
		{
			name: "next goal away loses on level score",
			signal: database.Signal{
				SignalType:    strategy.TypeNextGoalAway,
				TriggerMinute: 30,
			},
			match:      database.Match{Status: database.StatusLive, HomeScore: 1, AwayScore: 1},
			minute:     46,
			wantDone:   true,
			wantResult: database.ResultLoss,
		},
		{
			name: "late goal wins when advantaged team scored",
			signal: database.Signal{
				SignalType:     strategy.TypeLateGoal,
				TriggerMetrics: database.JSONMap{"advantage_team": "away"},
			},
			match:      database.Match{Status: database.StatusFinished, HomeScore: 1, AwayScore: 2},
			minute:     90,
			wantDone:   true,
			wantResult: database.ResultWin,
		},
		{
			name: "late goal pending before full time",
			signal: database.Signal{
				SignalType:     strategy.TypeLateGoal,
				TriggerMetrics: database.JSONMap{"advantage_team": "away"},
			},
			match:    database.Match{Status: database.StatusLive, HomeScore: 1, AwayScore: 2},
			minute:   80,
			wantDone: false,
		},
		{
			name: "team to score wins as soon as the team scores",
			signal: database.Signal{
				SignalType:     strategy.TypeTeamToScore,
				TriggerMetrics: database.JSONMap{"efficient_team": "home"},
			},
			match:      database.Match{Status: database.StatusLive, HomeScore: 1, AwayScore: 0},
			minute:     60,
			wantDone:   true,
			wantResult: database.ResultWin,
		},
		{
			name: "team to score loses at full time",
			signal: database.Signal{
				SignalType:     strategy.TypeTeamToScore,
				TriggerMetrics: database.JSONMap{"efficient_team": "home"},
			},
			match:      database.Match{Status: database.StatusFinished, HomeScore: 0, AwayScore: 2},
			minute:     90,
			wantDone:   true,
			wantResult: database.ResultLoss,
		},
		{
			name: "performance pushes on a draw",
			signal: database.Signal{
				SignalType:     strategy.TypePerformance,
				TriggerMinute:  40,
				TriggerMetrics: database.JSONMap{"trending_team": "home"},
			},
			match:      database.Match{Status: database.StatusLive, HomeScore: 1, AwayScore: 1},
			minute:     61,
			wantDone:   true,
			wantResult: database.ResultPush,
		},
		{
			name: "performance wins when trending team leads",
			signal: database.Signal{
				SignalType:     strategy.TypePerformance,
				TriggerMinute:  40,
				TriggerMetrics: database.JSONMap{"trending_team": "away"},
			},
			match:      database.Match{Status: database.StatusLive, HomeScore: 0, AwayScore: 2},
			minute:     61,
			wantDone:   true,
			wantResult: database.ResultWin,
		},
		{
			name: "performance pending before its 20 minute window",
			signal: database.Signal{
				SignalType:     strategy.TypePerformance,
				TriggerMinute:  40,
				TriggerMetrics: database.JSONMap{"trending_team": "home"},
			},
			match:    database.Match{Status: database.StatusLive, HomeScore: 1, AwayScore: 0},
			minute:   55,
			wantDone: false,
		},
		{
			name:     "unknown signal type stays pending",
			signal:   database.Signal{SignalType: "exotic_market"},
			match:    database.Match{Status: database.StatusFinished},
			minute:   90,
			wantDone: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			outcome := Resolve(tc.signal, tc.match, tc.minute)
			if outcome.Resolvable != tc.wantDone {
				t.Fatalf("Resolvable = %v, want %v (%s)", outcome.Resolvable, tc.wantDone, outcome.Explanation)
			}
			if tc.wantDone && outcome.Result != tc.wantResult {
				t.Errorf("Result = %q, want %q (%s)", outcome.Result, tc.wantResult, outcome.Explanation)
			}
		})
	}
}

func TestProfitLoss(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		signal database.Signal
		result string
		want   float64
	}{
		{
			name:   "win pays odds minus one",
			signal: database.Signal{Stake: 10, Odds: 1.8},
			result: database.ResultWin,
			want:   8.0,
		},
		{
			name:   "loss costs the stake",
			signal: database.Signal{Stake: 10, Odds: 1.8},
			result: database.ResultLoss,
			want:   -10.0,
		},
		{
			name:   "push is flat",
			signal: database.Signal{Stake: 10, Odds: 1.8},
			result: database.ResultPush,
			want:   0,
		},
		{
			name:   "zero odds fall back to the default",
			signal: database.Signal{Stake: 5},
			result: database.ResultWin,
			want:   5.0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ProfitLoss(tc.signal, tc.result); got != tc.want {
				t.Errorf("ProfitLoss = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"3", database.StatusFinished},
		{"FT", database.StatusFinished},
		{"Finished", database.StatusFinished},
		{"ended", database.StatusFinished},
		{"1", "1"},
		{"live", "live"},
	}
	for _, tc := range tests {
		if got := normalizeStatus(tc.in); got != tc.want {
			t.Errorf("normalizeStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
