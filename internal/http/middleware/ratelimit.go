package middleware

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// сколько разных клиентов помнит in-memory лимитер
const memoryLimiterSize = 10_000

type windowCount struct {
	n int64
}

// memoryCounter is the fixed-window fallback used while Redis is not
// configured. Entries expire with the window, the LRU bounds memory.
type memoryCounter struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *windowCount]
}

func newMemoryCounter(window time.Duration) *memoryCounter {
	return &memoryCounter{cache: expirable.NewLRU[string, *windowCount](memoryLimiterSize, nil, window)}
}

// incr counts one hit. The window starts with the first hit of a key; the
// counter is updated in place so its expiry is not pushed back.
func (m *memoryCounter) incr(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if wc, ok := m.cache.Get(key); ok {
		wc.n++
		return wc.n
	}
	m.cache.Add(key, &windowCount{n: 1})
	return 1
}
