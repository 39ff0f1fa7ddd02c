package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"sky-answers-bot/api/internal/answers"
	"sky-answers-bot/api/internal/metrics"
)

// AnswerStore is the durable layer, normally *AnswerRepo.
type AnswerStore interface {
	Find(ctx context.Context, hash string, maxAge time.Duration) ([]answers.TaskAnswer, error)
	Upsert(ctx context.Context, hash string, a []answers.TaskAnswer) error
}

// Cache reads memory first, then the durable store, and writes both.
// Durable errors are logged and treated as misses.
type Cache struct {
	mem     *MemoryCache
	durable AnswerStore
	ttl     time.Duration
}

var _ answers.Cache = (*Cache)(nil)

// NewCache builds the answer cache; durable may be nil.
func NewCache(mem *MemoryCache, durable AnswerStore, ttl time.Duration) *Cache {
	return &Cache{mem: mem, durable: durable, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, hash string) ([]answers.TaskAnswer, bool) {
	if v, ok := c.mem.Get(hash); ok {
		metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
		return v, true
	}
	metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()
	if c.durable == nil {
		return nil, false
	}

	v, err := c.durable.Find(ctx, hash, c.ttl)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("durable", "hit").Inc()
		c.mem.Add(hash, v)
		return v, true
	case errors.Is(err, ErrNotFound):
		metrics.CacheLookups.WithLabelValues("durable", "miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("durable", "error").Inc()
		zerolog.Ctx(ctx).Warn().Err(err).Str("hash", hash).Msg("store: cache lookup")
	}
	return nil, false
}

func (c *Cache) Put(ctx context.Context, hash string, a []answers.TaskAnswer) {
	c.mem.Add(hash, a)
	if c.durable == nil {
		return
	}
	if err := c.durable.Upsert(ctx, hash, a); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("hash", hash).Msg("store: cache write")
	}
}
