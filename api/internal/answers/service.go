package answers

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sky-answers-bot/api/internal/markup"
	"sky-answers-bot/api/internal/metrics"
)

// DefaultMaxTasks bounds the steps fetched for one task set.
const DefaultMaxTasks = 50

// TaskAnswer is the result for one successfully processed step.
type TaskAnswer struct {
	TaskNumber int      `json:"task_number"`
	StepUUID   string   `json:"step_uuid"`
	Question   string   `json:"question"`
	Answers    []string `json:"answers"`
}

// Source is one authenticated conversation with the remote service.
type Source interface {
	ResolveTaskSet(ctx context.Context, hash string) ([]string, error)
	FetchTaskMarkup(ctx context.Context, taskID string) (string, error)
	Close() error
}

// Cache stores finished results per task hash.
type Cache interface {
	Get(ctx context.Context, hash string) ([]TaskAnswer, bool)
	Put(ctx context.Context, hash string, answers []TaskAnswer)
}

type Service struct {
	open     func() Source
	maxTasks int
	cache    Cache
}

type Option func(*Service)

// WithMaxTasks caps the steps fetched per task set. Non-positive values are ignored.
func WithMaxTasks(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTasks = n
		}
	}
}

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// NewService builds a Service; open is called once per GetAnswers so every
// task set gets its own session.
func NewService(open func() Source, opts ...Option) *Service {
	s := &Service{open: open, maxTasks: DefaultMaxTasks}
	for _, o := range opts {
		o(s)
	}
	return s
}

type taskResult struct {
	stepUUID string
	question string
	answers  []string
	err      error
}

// GetAnswers returns the answers of every step of the task set that could be
// fetched and parsed, numbered 1..n in resolved order. Failed steps are
// logged and left out without taking a number. A task set that cannot be
// resolved yields an empty list.
func (s *Service) GetAnswers(ctx context.Context, hash string) []TaskAnswer {
	l := log.With().Str("batch", uuid.NewString()).Str("hash", hash).Logger()
	ctx = l.WithContext(ctx)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, hash); ok {
			l.Debug().Int("tasks", len(cached)).Msg("answers: cache hit")
			return cached
		}
	}

	src := s.open()
	defer func() {
		if err := src.Close(); err != nil {
			l.Warn().Err(err).Msg("answers: close session")
		}
	}()

	ids, err := src.ResolveTaskSet(ctx, hash)
	if err != nil {
		metrics.Rooms.WithLabelValues("failed").Inc()
		l.Error().Err(err).Msg("answers: resolve task set")
		return []TaskAnswer{}
	}
	metrics.Rooms.WithLabelValues("resolved").Inc()

	if len(ids) > s.maxTasks {
		l.Warn().Int("resolved", len(ids)).Int("cap", s.maxTasks).Msg("answers: task set truncated")
		ids = ids[:s.maxTasks]
	}

	results := make([]taskResult, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		results = append(results, s.processTask(ctx, src, id))
	}

	out := make([]TaskAnswer, 0, len(results))
	for i, r := range results {
		if r.err != nil {
			metrics.Tasks.WithLabelValues("failed").Inc()
			l.Warn().Err(r.err).Int("position", i+1).Str("step_uuid", r.stepUUID).Msg("answers: skip task")
			continue
		}
		metrics.Tasks.WithLabelValues("ok").Inc()
		out = append(out, TaskAnswer{
			TaskNumber: len(out) + 1,
			StepUUID:   r.stepUUID,
			Question:   r.question,
			Answers:    r.answers,
		})
	}
	l.Info().Int("resolved", len(ids)).Int("answered", len(out)).Msg("answers: task set done")

	if s.cache != nil && len(out) > 0 && ctx.Err() == nil {
		s.cache.Put(ctx, hash, out)
	}
	return out
}

func (s *Service) processTask(ctx context.Context, src Source, id string) taskResult {
	raw, err := src.FetchTaskMarkup(ctx, id)
	if err != nil {
		return taskResult{stepUUID: id, err: err}
	}
	doc, err := markup.Parse(raw)
	if err != nil {
		return taskResult{stepUUID: id, err: err}
	}
	zerolog.Ctx(ctx).Debug().Str("step_uuid", id).Int("bytes", len(raw)).Msg("answers: step parsed")
	question, answers := Extract(ctx, doc)
	return taskResult{stepUUID: id, question: question, answers: answers}
}
