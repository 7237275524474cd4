package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-mood-diary/internal/checkin"
	"telegram-mood-diary/internal/messages"
	"telegram-mood-diary/internal/models"
	"telegram-mood-diary/internal/report"
)

// Clearer removes a user's stored history.
type Clearer interface {
	ClearData(ctx context.Context, userID int64) (int64, error)
}

type Handler struct {
	Out     *messages.Telegram
	Diary   *checkin.Service
	DB      Clearer
	BotName string
	Log     *slog.Logger

	wg sync.WaitGroup
}

func NewHandler(out *messages.Telegram, diary *checkin.Service, db Clearer, botName string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Out: out, Diary: diary, DB: db, BotName: botName, Log: log}
}

// Listen handles updates until the channel closes or ctx is done. Each
// update runs in its own goroutine; per-user ordering is enforced by the
// check-in service.
func (h *Handler) Listen(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	defer h.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			h.wg.Add(1)
			go func() {
				defer h.wg.Done()
				h.HandleUpdate(ctx, upd)
			}()
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		h.HandleCommand(ctx, msg)
		return
	}
	h.HandleText(ctx, msg)
}

func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		h.reply(ctx, chatID, messages.TextStart)
	case "help":
		h.reply(ctx, chatID, messages.TextHelp)
	case "mood":
		h.handleMood(ctx, chatID, userID)
	case "mood_week":
		h.handleReport(ctx, chatID, userID, models.WindowWeek)
	case "mood_month":
		h.handleReport(ctx, chatID, userID, models.WindowMonth)
	case "mood_all":
		h.handleReport(ctx, chatID, userID, models.WindowAll)
	case "cancel":
		if h.Diary.Cancel(ctx, userID) {
			h.reply(ctx, chatID, messages.TextCancelled)
		} else {
			h.reply(ctx, chatID, messages.TextNothing)
		}
	case "clear":
		h.Diary.Cancel(ctx, userID)
		n, err := h.DB.ClearData(ctx, userID)
		if err != nil {
			h.Log.Error("clearing data", "user_id", userID, "error", err)
			h.reply(ctx, chatID, messages.TextFailed)
			return
		}
		h.Log.Info("data cleared", "user_id", userID, "rows", n)
		h.reply(ctx, chatID, messages.TextCleared)
	}
}

func (h *Handler) handleMood(ctx context.Context, chatID, userID int64) {
	if err := h.Diary.Begin(ctx, userID); err != nil {
		h.Log.Error("opening check-in", "user_id", userID, "error", err)
		h.reply(ctx, chatID, messages.TextFailed)
		return
	}
	if err := h.Out.SendMessage(ctx, messages.Ask(chatID)); err != nil {
		h.Log.Warn("check-in prompt not delivered", "user_id", userID, "error", err)
	}
}

func (h *Handler) handleReport(ctx context.Context, chatID, userID int64, w models.Window) {
	sum, err := h.Diary.Report(ctx, userID, w)
	switch {
	case errors.Is(err, report.ErrNoData):
		h.reply(ctx, chatID, messages.TextNoData)
	case err != nil:
		h.Log.Error("building report", "user_id", userID, "window", w, "error", err)
		h.reply(ctx, chatID, messages.TextFailed)
	default:
		h.reply(ctx, chatID, messages.Summary(sum))
	}
}

// HandleText treats a message starting with a digit as a mood answer.
// Messages outside an open check-in are ignored.
func (h *Handler) HandleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if !msg.Chat.IsPrivate() {
		mention := "@" + strings.ToLower(h.BotName)
		if h.BotName == "" || !strings.HasPrefix(strings.ToLower(text), mention) {
			return
		}
		text = strings.TrimSpace(text[len(mention):])
	}
	if !h.Diary.Awaiting(userID) {
		return
	}

	level, ok := parseLevel(text)
	if !ok {
		h.reply(ctx, chatID, messages.TextPickLevel)
		return
	}

	err := h.Diary.Submit(ctx, userID, level)
	switch {
	case errors.Is(err, models.ErrValidation):
		h.reply(ctx, chatID, messages.TextPickLevel)
	case errors.Is(err, checkin.ErrNoSession):
		// answered concurrently or the reminder already closed it
	case err != nil:
		h.Log.Error("recording mood", "user_id", userID, "error", err)
		h.reply(ctx, chatID, messages.TextFailed)
	default:
		h.reply(ctx, chatID, messages.Recorded(level))
	}
}

func parseLevel(text string) (int, bool) {
	if text == "" || text[0] < '0' || text[0] > '9' {
		return 0, false
	}
	return int(text[0] - '0'), true
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if err := h.Out.SendMessage(ctx, msg); err != nil {
		h.Log.Warn("reply not delivered", "chat_id", chatID, "error", err)
	}
}
