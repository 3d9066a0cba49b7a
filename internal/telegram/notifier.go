package telegram

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/betbog/betbog/internal/database"
)

// Notifier sends signal and settlement notifications to the configured
// signal chat. A zero chat ID disables sending.
type Notifier struct {
	bot    *bot.Bot
	chatID int64
	logger *slog.Logger
}

// NewNotifier creates a notifier posting to chatID.
func NewNotifier(b *bot.Bot, chatID int64, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{
		bot:    b,
		chatID: chatID,
		logger: logger.With("component", "notifier"),
	}
}

// NotifySignal announces a freshly generated signal.
func (n *Notifier) NotifySignal(ctx context.Context, signal database.Signal, match database.Match) error {
	if n.bot == nil || n.chatID == 0 {
		return nil
	}

	emoji := "📈"
	switch {
	case signal.Confidence > 0.8:
		emoji = "🔥"
	case signal.Confidence > 0.6:
		emoji = "⚡"
	}

	var b strings.Builder
	b.WriteString("🎯 <b>New betting signal</b>\n\n")
	fmt.Fprintf(&b, "%s Strategy: <b>%s</b>\n", emoji, signal.StrategyName)
	fmt.Fprintf(&b, "⚽ Match: %s vs %s\n", html.EscapeString(match.HomeTeam), html.EscapeString(match.AwayTeam))
	fmt.Fprintf(&b, "🏆 League: %s\n", html.EscapeString(match.League))
	fmt.Fprintf(&b, "🎯 Type: %s\n", signal.SignalType)
	fmt.Fprintf(&b, "📊 Confidence: %.1f%%\n", signal.Confidence*100)
	fmt.Fprintf(&b, "📋 Prediction: %s\n", signal.Prediction)
	if signal.Odds > 0 {
		fmt.Fprintf(&b, "💰 Recommended odds: %.2f\n", signal.Odds)
	}
	fmt.Fprintf(&b, "⏰ Minute: %d'", signal.TriggerMinute)

	return n.send(ctx, b.String())
}

// NotifyResult announces a settled signal with its profit or loss.
func (n *Notifier) NotifyResult(ctx context.Context, signal database.Signal, match database.Match, result string, profitLoss float64) error {
	if n.bot == nil || n.chatID == 0 {
		return nil
	}

	resultEmoji := "⏳"
	switch result {
	case database.ResultWin:
		resultEmoji = "✅"
	case database.ResultLoss:
		resultEmoji = "❌"
	}
	pnlEmoji := "💛"
	switch {
	case profitLoss > 0:
		pnlEmoji = "💚"
	case profitLoss < 0:
		pnlEmoji = "❤️"
	}

	var b strings.Builder
	b.WriteString("📈 <b>Signal result</b>\n\n")
	fmt.Fprintf(&b, "%s Result: <b>%s</b>\n", resultEmoji, strings.ToUpper(result))
	fmt.Fprintf(&b, "🎯 Strategy: %s\n", signal.StrategyName)
	fmt.Fprintf(&b, "⚽ Match: %s %d-%d %s\n",
		html.EscapeString(match.HomeTeam), match.HomeScore, match.AwayScore, html.EscapeString(match.AwayTeam))
	fmt.Fprintf(&b, "%s P&L: %+.2f\n", pnlEmoji, profitLoss)
	fmt.Fprintf(&b, "⏰ %s", time.Now().Format("15:04:05"))

	return n.send(ctx, b.String())
}

func (n *Notifier) send(ctx context.Context, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to send notification", "error", err)
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
