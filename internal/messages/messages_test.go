package messages

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-mood-diary/internal/models"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	return tgbotapi.Message{MessageID: len(b.sent)}, b.err
}

func TestTelegramSend(t *testing.T) {
	bot := &fakeBot{}
	tg := NewTelegram(bot)

	if err := tg.Send(context.Background(), 7, "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok || msg.ChatID != 7 || msg.Text != "hi" {
		t.Errorf("sent %+v", bot.sent[0])
	}
}

func TestTelegramSendFailureIsDeliveryError(t *testing.T) {
	bot := &fakeBot{err: errors.New("Forbidden: bot was blocked by the user")}
	err := NewTelegram(bot).Send(context.Background(), 7, "hi")

	if !errors.Is(err, models.ErrDelivery) {
		t.Fatalf("err = %v, want ErrDelivery", err)
	}
	var de *models.DeliveryError
	if !errors.As(err, &de) || de.UserID != 7 {
		t.Errorf("err = %#v", err)
	}
}

func TestTelegramSendCancelledContext(t *testing.T) {
	bot := &fakeBot{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewTelegram(bot).Send(ctx, 1, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(bot.sent) != 0 {
		t.Error("message sent despite cancelled context")
	}
}

func TestMoodKeyboardHasSevenLevels(t *testing.T) {
	kb := MoodKeyboard()
	n := 0
	for _, row := range kb.Keyboard {
		for _, b := range row {
			n++
			if b.Text[0] < '1' || b.Text[0] > '7' {
				t.Errorf("button %q does not start with a level", b.Text)
			}
		}
	}
	if n != models.MaxLevel {
		t.Errorf("%d buttons, want %d", n, models.MaxLevel)
	}
}

func TestSummaryText(t *testing.T) {
	s := models.Summary{
		Window: models.WindowWeek,
		Series: []models.SeriesPoint{
			{Date: "2025-05-01", Value: 4},
			{Date: "2025-05-02", Value: 7},
		},
		Average: 5,
		Count:   3,
	}
	got := Summary(s)
	for _, want := range []string{"за неделю", "01.05", "02.05", "Среднее настроение: 5 🌿", "отметок: 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}
