package menubot

import (
	"fmt"
	"html"
	"strings"

	"github.com/betbog/betbog/internal/database"
)

// formatSignalsOverview renders the signals menu header with counts.
func formatSignalsOverview(counts database.SignalCounts) string {
	var b strings.Builder
	b.WriteString("🎯 <b>Signals</b>\n\n")
	fmt.Fprintf(&b, "Total: %d\n", counts.Total)
	fmt.Fprintf(&b, "⏳ Pending: %d\n", counts.Pending)
	fmt.Fprintf(&b, "✅ Won: %d\n", counts.Won)
	fmt.Fprintf(&b, "❌ Lost: %d", counts.Lost)
	return b.String()
}

// formatSignalList renders up to limit signals with their matches.
func formatSignalList(title string, signals []database.PendingSignal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)

	if len(signals) == 0 {
		b.WriteString("Nothing here yet.")
		return b.String()
	}

	for _, ps := range signals {
		fmt.Fprintf(&b, "• <b>%s</b> (%s)\n", ps.Signal.StrategyName, ps.Signal.SignalType)
		fmt.Fprintf(&b, "  %s vs %s, %d'\n",
			html.EscapeString(ps.Match.HomeTeam), html.EscapeString(ps.Match.AwayTeam), ps.Signal.TriggerMinute)
		fmt.Fprintf(&b, "  Confidence %.0f%%", ps.Signal.Confidence*100)
		if ps.Signal.Result != database.ResultPending {
			fmt.Fprintf(&b, ", %s %+.2f", ps.Signal.Result, ps.Signal.ProfitLoss)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatProfitSummary renders a settled-signal summary for a period.
func formatProfitSummary(period string, summary database.ProfitSummary) string {
	winRate := 0.0
	if settled := summary.Won + summary.Lost; settled > 0 {
		winRate = float64(summary.Won) / float64(settled) * 100
	}
	roi := 0.0
	if summary.Staked > 0 {
		roi = summary.Profit / summary.Staked * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Statistics: %s</b>\n\n", period)
	fmt.Fprintf(&b, "Settled signals: %d\n", summary.Signals)
	fmt.Fprintf(&b, "✅ Won: %d\n", summary.Won)
	fmt.Fprintf(&b, "❌ Lost: %d\n", summary.Lost)
	fmt.Fprintf(&b, "Win rate: %.1f%%\n", winRate)
	fmt.Fprintf(&b, "💰 Profit: %+.2f units\n", summary.Profit)
	fmt.Fprintf(&b, "ROI: %+.1f%%", roi)
	return b.String()
}

// formatLiveMatches renders current live matches.
func formatLiveMatches(matches []database.Match) string {
	var b strings.Builder
	b.WriteString("⚽ <b>Live matches</b>\n\n")

	if len(matches) == 0 {
		b.WriteString("No live matches being monitored.")
		return b.String()
	}

	for _, m := range matches {
		fmt.Fprintf(&b, "• %s %d-%d %s (%d')\n",
			html.EscapeString(m.HomeTeam), m.HomeScore, m.AwayScore,
			html.EscapeString(m.AwayTeam), m.Minute)
		fmt.Fprintf(&b, "  %s\n", html.EscapeString(m.League))
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatStrategyStats renders per-strategy performance with ROI.
func formatStrategyStats(stats []database.StrategyStats) string {
	var b strings.Builder
	b.WriteString("🔧 <b>Strategies</b>\n\n")

	if len(stats) == 0 {
		b.WriteString("No strategy statistics yet.")
		return b.String()
	}

	for _, s := range stats {
		winRate := 0.0
		if s.TotalSignals > 0 {
			winRate = float64(s.WinningSignals) / float64(s.TotalSignals) * 100
		}
		fmt.Fprintf(&b, "• <b>%s</b>\n", s.StrategyName)
		fmt.Fprintf(&b, "  %d signals, %.0f%% wins, ROI %+.1f%%\n",
			s.TotalSignals, winRate, s.ROI*100)
	}
	return strings.TrimRight(b.String(), "\n")
}

const helpText = `❓ <b>Help</b>

Commands:
/start - welcome and main menu
/menu - main menu
/signals - signal overview
/stats - performance statistics
/matches - live matches being monitored
/help - this message

The monitor generates betting signals from live match metrics. Signals
settle automatically as matches finish; statistics and strategy ROI
update with every settled signal.`
