package cache

import (
	"sync"
	"time"
)

type entry struct {
	val []byte
	exp time.Time
}

// MemoryCache is a TTL cache of byte slices. A non-positive TTL disables it:
// Set becomes a no-op and Get always misses.
type MemoryCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

func NewMemory(ttl time.Duration) *MemoryCache {
	return &MemoryCache{m: make(map[string]entry), ttl: ttl, now: time.Now}
}

// WithClock swaps the time source, for tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[key]
	if !ok || c.now().After(e.exp) {
		return nil, false
	}
	return e.val, true
}

func (c *MemoryCache) Set(key string, val []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = entry{val: val, exp: c.now().Add(c.ttl)}
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *MemoryCache) Purge() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}

// Len counts entries including expired ones not yet overwritten.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
