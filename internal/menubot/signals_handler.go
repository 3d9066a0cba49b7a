package menubot

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSignalsHandler returns a handler for the /signals command.
func NewSignalsHandler(deps HandlerDeps) bot.HandlerFunc {
	return signalsHandler{deps}.Handle
}

type signalsHandler struct {
	deps HandlerDeps
}

func (h signalsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "signals")

	if update.Message == nil {
		return
	}

	counts, err := h.deps.Store.SignalCounts(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load signal counts", "error", err)
		sendError(ctx, b, update.Message.Chat.ID, log)
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        formatSignalsOverview(counts),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: signalsKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send signals overview", "error", err, "chat_id", update.Message.Chat.ID)
	}
}

// sendError posts a generic failure message to the chat.
func sendError(ctx context.Context, b *bot.Bot, chatID int64, log *slog.Logger) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "⚠️ Something went wrong, try again later.",
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send error message", "error", err, "chat_id", chatID)
	}
}
