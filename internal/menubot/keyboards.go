package menubot

import "github.com/go-telegram/bot/models"

// Callback data values dispatched by the callback handler.
const (
	cbMainMenu   = "main_menu"
	cbSignals    = "signals"
	cbStats      = "stats"
	cbMatches    = "matches"
	cbPnL        = "pnl"
	cbStrategies = "strategies"
	cbHelp       = "help"

	cbSignalsActive  = "signals_active"
	cbSignalsWon     = "signals_won"
	cbSignalsLost    = "signals_lost"
	cbSignalsPending = "signals_pending"

	cbStatsToday = "stats_today"
	cbStatsWeek  = "stats_week"
	cbStatsMonth = "stats_month"
	cbStatsAll   = "stats_all"
)

func button(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

func mainMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{button("🎯 Signals", cbSignals), button("📊 Statistics", cbStats)},
			{button("⚽ Live matches", cbMatches), button("💰 P&L report", cbPnL)},
			{button("🔧 Strategies", cbStrategies), button("❓ Help", cbHelp)},
		},
	}
}

func signalsKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{button("🔴 Active", cbSignalsActive), button("✅ Won", cbSignalsWon)},
			{button("❌ Lost", cbSignalsLost), button("⏳ Pending", cbSignalsPending)},
			{button("🔙 Back", cbMainMenu)},
		},
	}
}

func statsKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{button("📅 Today", cbStatsToday), button("📅 This week", cbStatsWeek)},
			{button("📅 This month", cbStatsMonth), button("📊 All time", cbStatsAll)},
			{button("🔙 Back", cbMainMenu)},
		},
	}
}

func backKeyboard(target string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{button("🔙 Back", target)},
		},
	}
}
