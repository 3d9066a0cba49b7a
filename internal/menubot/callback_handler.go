package menubot

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/betbog/betbog/internal/database"
)

const signalListLimit = 10

// NewCallbackHandler returns the dispatcher for inline-keyboard callback
// queries.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

type callbackHandler struct {
	deps HandlerDeps
}

func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}

	// Acknowledge immediately so the button stops spinning.
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID})
	if err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}

	chatID := query.Message.Message.Chat.ID
	messageID := query.Message.Message.ID

	var (
		text   string
		markup *models.InlineKeyboardMarkup
	)

	switch query.Data {
	case cbMainMenu:
		text = "📋 <b>Main menu</b>"
		markup = mainMenuKeyboard()

	case cbSignals:
		counts, err := h.deps.Store.SignalCounts(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Failed to load signal counts", "error", err)
			return
		}
		text = formatSignalsOverview(counts)
		markup = signalsKeyboard()

	case cbSignalsActive, cbSignalsPending:
		text, markup = h.signalList(ctx, log, "⏳ <b>Pending signals</b>", database.ResultPending)

	case cbSignalsWon:
		text, markup = h.signalList(ctx, log, "✅ <b>Won signals</b>", database.ResultWin)

	case cbSignalsLost:
		text, markup = h.signalList(ctx, log, "❌ <b>Lost signals</b>", database.ResultLoss)

	case cbStats:
		text = "📊 <b>Statistics</b>\n\nPick a period:"
		markup = statsKeyboard()

	case cbStatsToday, cbStatsWeek, cbStatsMonth, cbStatsAll:
		text, markup = h.statsForPeriod(ctx, log, query.Data)

	case cbMatches:
		matches, err := h.deps.Store.LiveMatches(ctx, liveMatchesLimit)
		if err != nil {
			log.ErrorContext(ctx, "Failed to load live matches", "error", err)
			return
		}
		text = formatLiveMatches(matches)
		markup = backKeyboard(cbMainMenu)

	case cbPnL:
		summary, err := h.deps.Store.ProfitSummary(ctx, time.Time{})
		if err != nil {
			log.ErrorContext(ctx, "Failed to load profit summary", "error", err)
			return
		}
		text = formatProfitSummary("all time", summary)
		markup = backKeyboard(cbMainMenu)

	case cbStrategies:
		stats, err := h.deps.Store.AllStrategyStats(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Failed to load strategy stats", "error", err)
			return
		}
		text = formatStrategyStats(stats)
		markup = backKeyboard(cbMainMenu)

	case cbHelp:
		text = helpText
		markup = backKeyboard(cbMainMenu)

	default:
		log.WarnContext(ctx, "Unknown callback data", "data", query.Data)
		return
	}

	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit menu message", "error", err, "chat_id", chatID)
	}
}

func (h callbackHandler) signalList(ctx context.Context, log *slog.Logger, title, result string) (string, *models.InlineKeyboardMarkup) {
	signals, err := h.deps.Store.RecentSignals(ctx, result, signalListLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load signals", "result", result, "error", err)
		return "⚠️ Something went wrong, try again later.", backKeyboard(cbSignals)
	}
	return formatSignalList(title, signals), backKeyboard(cbSignals)
}

func (h callbackHandler) statsForPeriod(ctx context.Context, log *slog.Logger, data string) (string, *models.InlineKeyboardMarkup) {
	var (
		period string
		since  time.Time
	)
	now := time.Now()

	switch data {
	case cbStatsToday:
		period = "today"
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case cbStatsWeek:
		period = "this week"
		since = now.AddDate(0, 0, -7)
	case cbStatsMonth:
		period = "this month"
		since = now.AddDate(0, -1, 0)
	default:
		period = "all time"
	}

	summary, err := h.deps.Store.ProfitSummary(ctx, since)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load profit summary", "period", period, "error", err)
		return "⚠️ Something went wrong, try again later.", backKeyboard(cbStats)
	}
	return formatProfitSummary(period, summary), backKeyboard(cbStats)
}
