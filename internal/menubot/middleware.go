package menubot

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Authorized creates a middleware restricting handlers to the admin and
// the configured allowed user IDs. Unauthorized messages get a short
// refusal; unauthorized callback queries are silently dropped.
func Authorized(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			log := deps.Logger.With("middleware", "authorized")

			var userID, chatID int64
			switch {
			case update.Message != nil && update.Message.From != nil:
				userID = update.Message.From.ID
				chatID = update.Message.Chat.ID
			case update.CallbackQuery != nil:
				userID = update.CallbackQuery.From.ID
			default:
				next(ctx, b, update)
				return
			}

			if deps.Config.IsUserAuthorized(userID) {
				next(ctx, b, update)
				return
			}

			log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID)

			if chatID != 0 {
				_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   "⛔ You are not authorized to use this bot.",
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
				}
			}
		}
	}
}
