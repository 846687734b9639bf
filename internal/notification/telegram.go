// Package notification alerts the back-office about new bookings.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iliyamo/yacht-charter/internal/pricing"
	"github.com/iliyamo/yacht-charter/internal/queue"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts a message to the admin chat.  Without a token or
// chat id it only logs.
type TelegramNotifier struct {
	bot      sender
	chatID   int64
	currency string
	log      *slog.Logger
}

func NewTelegramNotifier(token string, chatID int64, currency string, log *slog.Logger) (*TelegramNotifier, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	n := &TelegramNotifier{chatID: chatID, currency: currency, log: log}
	if token == "" {
		log.Warn("telegram bot token is empty, notifications disabled")
		return n, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	n.bot = bot
	return n, nil
}

// NotifyBookingCreated implements queue.BookingNotifier.
func (n *TelegramNotifier) NotifyBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) {
	when := ev.BookingDate
	if ev.StartTime != "" {
		when += " " + ev.StartTime
	}
	text := fmt.Sprintf(
		"*New booking request #%d*\n\nYacht: #%d\nDate: %s\nDuration: %d h\nOptions: %d\nTotal: %s\n\n%s\n%s\n%s",
		ev.BookingID, ev.YachtID, when, ev.DurationHours, ev.OptionCount,
		pricing.Format(ev.TotalPriceCents, n.currency),
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, ev.CustomerName),
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, ev.CustomerPhone),
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, ev.CustomerEmail),
	)
	n.send(ctx, text)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) {
	if n.bot == nil {
		n.log.Debug("notification skipped (bot disabled)", slog.String("text", text))
		return
	}
	if n.chatID == 0 {
		n.log.Debug("notification skipped (no chat_id)")
		return
	}
	if err := ctx.Err(); err != nil {
		n.log.Debug("notification skipped (context cancelled)", slog.Int64("chat_id", n.chatID))
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Error("failed to send telegram notification",
			slog.Int64("chat_id", n.chatID),
			slog.String("error", err.Error()),
		)
	}
}
