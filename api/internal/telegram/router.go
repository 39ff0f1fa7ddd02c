package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"sky-answers-bot/api/internal/answers"
)

// Sender is the part of *tgbotapi.BotAPI the router uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// AnswerService is satisfied by *answers.Service.
type AnswerService interface {
	GetAnswers(ctx context.Context, hash string) []answers.TaskAnswer
}

type Router struct {
	Bot     Sender
	Answers AnswerService
	// Timeout bounds one link lookup; zero means no limit.
	Timeout time.Duration

	wg sync.WaitGroup
}

func (r *Router) HandleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start", "help":
		r.send(cid, greetingText)
	default:
		r.send(cid, unknownCommandText)
	}
}

// HandleUpdate dispatches one update. Link lookups run in the background,
// one per chat at a time.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(upd)
		return
	}
	if upd.Message.Text == "" {
		return
	}

	cid := upd.Message.Chat.ID
	if !tryBeginLookup(cid) {
		r.send(cid, busyText)
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer endLookup(cid)
		r.handleLink(ctx, cid, upd.Message.Text)
	}()
}

// Wait blocks until background lookups finish.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) send(chatID int64, text string) (tgbotapi.Message, error) {
	msg, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("telegram: send")
	}
	return msg, err
}
