package messages

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-mood-diary/internal/models"
	"telegram-mood-diary/internal/report"
)

const (
	TextStart = "Привет! 😊 Я помогу тебе отслеживать настроение.\n\n" +
		"Нажми /mood чтобы отметить, как ты себя чувствуешь 💬"
	TextHelp = "✨ Команды бота:\n" +
		"/start — начать общение\n" +
		"/mood — выбрать настроение\n" +
		"/mood_week — настроение за неделю\n" +
		"/mood_month — настроение за месяц\n" +
		"/mood_all — настроение за всё время\n" +
		"/cancel — отменить отметку\n" +
		"/clear — удалить мои данные\n" +
		"/help — список команд"
	TextAsk       = "Как ты себя чувствуешь сегодня?"
	TextPickLevel = "Пожалуйста, выбери настроение с помощью кнопок 😊"
	TextNoData    = "Пока нет данных для отображения 📉"
	TextCancelled = "Отметка настроения отменена."
	TextNothing   = "Сейчас нечего отменять."
	TextCleared   = "Твои данные удалены 🧹"
	TextFailed    = "Что-то пошло не так, попробуй ещё раз позже 🙏"
)

var moodButtons = [][]string{
	{"1 💀 Хочу исчезнуть", "2 🌧️ Всё валится из рук", "3 😕 День какой-то не такой"},
	{"4 😐 Просто день", "5 🌿 Внутренний дзен", "6 🌞 На подъёме!", "7 🚀 Я лечу от счастья!"},
}

var responses = map[int]string{
	1: "😩 Держись! Сделай паузу и подыши — станет немного легче.",
	2: "😣 Это пройдёт. Ты справишься!",
	3: "😕 Надеюсь, день станет лучше.",
	4: "🙂 Неплохо! Продолжай в том же духе.",
	5: "😌 Спокойствие — это круто. Наслаждайся моментом!",
	6: "😀 Отлично! Заряжай позитивом других!",
	7: "🤩 Ура! Такое настроение вдохновляет! ⭐",
}

// MoodKeyboard is the 1..7 reply keyboard shown with a check-in prompt.
func MoodKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(moodButtons))
	for _, row := range moodButtons {
		btns := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			btns = append(btns, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(btns...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// Ask builds the check-in prompt for chatID.
func Ask(chatID int64) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, TextAsk)
	msg.ReplyMarkup = MoodKeyboard()
	return msg
}

// Recorded is the acknowledgement for a stored mood level.
func Recorded(level int) string {
	if r, ok := responses[level]; ok {
		return r
	}
	return "Настроение записано."
}

var windowTitles = map[models.Window]string{
	models.WindowWeek:  "за неделю",
	models.WindowMonth: "за месяц",
	models.WindowAll:   "за всё время",
}

// Summary renders a report as text, one line per day.
func Summary(s models.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 Настроение %s\n\n", windowTitles[s.Window])
	for _, p := range s.Series {
		d := p.Date
		if t, err := time.Parse(models.DayLayout, p.Date); err == nil {
			d = t.Format("02.01")
		}
		fmt.Fprintf(&b, "%s  %s %.1f\n", d, report.Label(p.Value), p.Value)
	}
	fmt.Fprintf(&b, "\nСреднее настроение: %v %s (отметок: %d)",
		report.Round2(s.Average), report.Label(s.Average), s.Count)
	return b.String()
}
