package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sky-answers-bot/api/internal/answers"
)

const (
	greetingText       = "Привет! Я бот, который поможет тебе пройти тест. Просто отправь мне ссылку на тест, и я постараюсь дать тебе ответы. Удачи! 😉"
	unknownCommandText = "Неизвестная команда"
	emptyLinkText      = "⚠️ Пожалуйста, отправьте корректную ссылку на задание."
	badLinkText        = "⚠️ Неверный формат ссылки. Отправьте полную ссылку на задание."
	busyText           = "⏳ Ещё ищу ответы по предыдущей ссылке, подождите."
	processingText     = "🔍 Ищу ответы, подождите..."
	notFoundText       = "❌ Не удалось найти ответы для этого задания."
	doneText           = "✅ Выдача ответов завершена!"

	separator = "━━━━━━━━━━━━━━━━━━━"
	// Telegram allows 4096 characters; keep headroom for the frame.
	maxMessageRunes = 3900
)

// FormatTaskAnswer renders one task. An over-long question is cut so the
// answers always fit.
func FormatTaskAnswer(ta answers.TaskAnswer) string {
	var tail strings.Builder
	tail.WriteString("🔍 ОТВЕТЫ:\n\n")
	switch len(ta.Answers) {
	case 0:
	case 1:
		fmt.Fprintf(&tail, "✅ Ответ: %s\n", ta.Answers[0])
	default:
		for i, a := range ta.Answers {
			fmt.Fprintf(&tail, "✅ Ответ %d: %s\n", i+1, a)
		}
	}
	tail.WriteString("\n" + separator)

	head := fmt.Sprintf("📝 Задание #%d\n%s\n\n", ta.TaskNumber, separator)
	budget := maxMessageRunes - utf8.RuneCountInString(head) - utf8.RuneCountInString(tail.String()) - 2
	question := truncateRunes(ta.Question, budget)

	return truncateRunes(head+question+"\n\n"+tail.String(), maxMessageRunes)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
