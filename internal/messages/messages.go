package messages

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-mood-diary/internal/models"
)

// Sender is the part of *tgbotapi.BotAPI used for outbound messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram delivers plain text messages to a user's private chat.
type Telegram struct {
	Bot Sender
}

func NewTelegram(bot Sender) *Telegram {
	return &Telegram{Bot: bot}
}

func (t *Telegram) Send(ctx context.Context, userID int64, text string) error {
	return t.SendMessage(ctx, tgbotapi.NewMessage(userID, text))
}

// SendMessage sends a prepared message, e.g. one carrying a keyboard.
func (t *Telegram) SendMessage(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := ctx.Err(); err != nil {
		return &models.DeliveryError{UserID: msg.ChatID, Err: err}
	}
	if _, err := t.Bot.Send(msg); err != nil {
		return &models.DeliveryError{UserID: msg.ChatID, Err: err}
	}
	return nil
}
