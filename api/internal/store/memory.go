package store

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"sky-answers-bot/api/internal/answers"
)

// MemoryCache is a size- and age-bounded in-process cache.
type MemoryCache struct {
	lru *expirable.LRU[string, []answers.TaskAnswer]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 256
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []answers.TaskAnswer](size, nil, ttl)}
}

func (m *MemoryCache) Get(hash string) ([]answers.TaskAnswer, bool) { return m.lru.Get(hash) }

func (m *MemoryCache) Add(hash string, a []answers.TaskAnswer) { m.lru.Add(hash, a) }

func (m *MemoryCache) Len() int { return m.lru.Len() }
