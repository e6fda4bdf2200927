// Package notify implements the notification port. The planner itself only
// depends on domain.Notifier; this package provides a Telegram delivery and
// a no-op fallback.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the slice of the Telegram API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	sender Sender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegram(token string, chatID int64, logger *zerolog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return NewTelegramWithSender(api, chatID, logger), nil
}

// NewTelegramWithSender wires an explicit sender, used by tests.
func NewTelegramWithSender(sender Sender, chatID int64, logger *zerolog.Logger) *Telegram {
	return &Telegram{sender: sender, chatID: chatID, logger: logger}
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.sender.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.logger.Debug().Int64("chat_id", t.chatID).Msg("notification sent")
	return nil
}

// Nop satisfies domain.Notifier when notifications are disabled.
type Nop struct{}

func (Nop) Notify(ctx context.Context, text string) error { return nil }
