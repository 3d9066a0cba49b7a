package menubot

import (
	"strings"
	"testing"

	"github.com/betbog/betbog/internal/database"
)

func TestFormatSignalsOverview(t *testing.T) {
	t.Parallel()

	got := formatSignalsOverview(database.SignalCounts{Total: 12, Pending: 3, Won: 6, Lost: 3})
	for _, want := range []string{"Total: 12", "Pending: 3", "Won: 6", "Lost: 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("overview missing %q:\n%s", want, got)
		}
	}
}

func TestFormatSignalList(t *testing.T) {
	t.Parallel()

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		got := formatSignalList("⏳ Pending", nil)
		if !strings.Contains(got, "Nothing here yet.") {
			t.Errorf("empty list output = %q", got)
		}
	})

	t.Run("escapes team names and shows results", func(t *testing.T) {
		t.Parallel()

		signals := []database.PendingSignal{
			{
				Signal: database.Signal{
					StrategyName:  "dxg_spike",
					SignalType:    "over_2.5",
					Confidence:    0.74,
					TriggerMinute: 38,
					Result:        database.ResultWin,
					ProfitLoss:    8,
				},
				Match: database.Match{HomeTeam: "Brighton & Hove", AwayTeam: "Leeds"},
			},
			{
				Signal: database.Signal{
					StrategyName:  "wave_pattern",
					SignalType:    "over_2.5",
					Confidence:    0.7,
					TriggerMinute: 50,
					Result:        database.ResultPending,
				},
				Match: database.Match{HomeTeam: "Lyon", AwayTeam: "Nice"},
			},
		}

		got := formatSignalList("✅ Won", signals)
		if !strings.Contains(got, "Brighton &amp; Hove") {
			t.Errorf("ampersand not escaped:\n%s", got)
		}
		if !strings.Contains(got, "win +8.00") {
			t.Errorf("settled result missing:\n%s", got)
		}
		if strings.Contains(got, "pending") {
			t.Errorf("pending signals should not print a result:\n%s", got)
		}
		if !strings.Contains(got, "Confidence 74%") {
			t.Errorf("confidence missing:\n%s", got)
		}
	})
}

func TestFormatProfitSummary(t *testing.T) {
	t.Parallel()

	summary := database.ProfitSummary{
		Signals: 10,
		Won:     6,
		Lost:    4,
		Profit:  12.5,
		Staked:  100,
	}
	got := formatProfitSummary("Last 7 days", summary)

	for _, want := range []string{
		"Statistics: Last 7 days",
		"Settled signals: 10",
		"Win rate: 60.0%",
		"Profit: +12.50 units",
		"ROI: +12.5%",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}

	empty := formatProfitSummary("Today", database.ProfitSummary{})
	if !strings.Contains(empty, "Win rate: 0.0%") || !strings.Contains(empty, "ROI: +0.0%") {
		t.Errorf("zero summary should not divide by zero:\n%s", empty)
	}
}

func TestFormatLiveMatches(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		if got := formatLiveMatches(nil); !strings.Contains(got, "No live matches") {
			t.Errorf("empty output = %q", got)
		}
	})

	t.Run("renders score and league", func(t *testing.T) {
		t.Parallel()

		matches := []database.Match{
			{HomeTeam: "Betis", AwayTeam: "Sevilla", HomeScore: 2, AwayScore: 1, Minute: 77, League: "La Liga"},
		}
		got := formatLiveMatches(matches)
		if !strings.Contains(got, "Betis 2-1 Sevilla (77')") {
			t.Errorf("match line missing:\n%s", got)
		}
		if !strings.Contains(got, "La Liga") {
			t.Errorf("league missing:\n%s", got)
		}
	})
}

func TestFormatStrategyStats(t *testing.T) {
	t.Parallel()

	stats := []database.StrategyStats{
		{StrategyName: "dxg_spike", TotalSignals: 20, WinningSignals: 12, ROI: 0.08},
		{StrategyName: "wave_pattern", TotalSignals: 0, WinningSignals: 0, ROI: 0},
	}
	got := formatStrategyStats(stats)

	if !strings.Contains(got, "20 signals, 60% wins, ROI +8.0%") {
		t.Errorf("dxg_spike line missing:\n%s", got)
	}
	if !strings.Contains(got, "0 signals, 0% wins") {
		t.Errorf("zero-signal strategy should not divide by zero:\n%s", got)
	}
}
