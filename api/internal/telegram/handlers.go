package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"sky-answers-bot/api/internal/answers"
)

func (r *Router) handleLink(ctx context.Context, chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		r.send(chatID, emptyLinkText)
		return
	}
	hash, err := answers.ParseTaskHash(text)
	if err != nil {
		r.send(chatID, badLinkText)
		return
	}
	l := log.With().Int64("chat", chatID).Str("hash", hash).Logger()
	l.Info().Msg("telegram: link received")

	processing, err := r.send(chatID, processingText)
	if err != nil {
		return
	}
	defer func() {
		if _, err := r.Bot.Request(tgbotapi.NewDeleteMessage(chatID, processing.MessageID)); err != nil {
			l.Warn().Err(err).Msg("telegram: delete processing message")
		}
	}()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	list := r.Answers.GetAnswers(ctx, hash)
	if len(list) == 0 {
		r.send(chatID, notFoundText)
		return
	}
	for _, ta := range list {
		if _, err := r.send(chatID, FormatTaskAnswer(ta)); err != nil {
			return
		}
	}
	r.send(chatID, doneText)
}
