package menubot

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatsHandler returns a handler for the /stats command.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil {
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        "📊 <b>Statistics</b>\n\nPick a period:",
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: statsKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send stats menu", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
