package menubot

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const liveMatchesLimit = 10

// NewMatchesHandler returns a handler for the /matches command.
func NewMatchesHandler(deps HandlerDeps) bot.HandlerFunc {
	return matchesHandler{deps}.Handle
}

type matchesHandler struct {
	deps HandlerDeps
}

func (h matchesHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "matches")

	if update.Message == nil {
		return
	}

	matches, err := h.deps.Store.LiveMatches(ctx, liveMatchesLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load live matches", "error", err)
		sendError(ctx, b, update.Message.Chat.ID, log)
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        formatLiveMatches(matches),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: backKeyboard(cbMainMenu),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send live matches", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
