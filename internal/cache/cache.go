// Package cache provides a small mutex-guarded TTL cache used for the
// per-user "today's tracker" responses (key tracker_today_{user_id}_{date}).
package cache

import (
	"fmt"
	"sync"
	"time"
)

type entry struct {
	at  time.Time
	val []byte
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
}

func New(ttl time.Duration) *Cache {
	return &Cache{entries: make(map[string]entry), ttl: ttl}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Since(e.at) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.val, true
}

func (c *Cache) Set(key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{at: time.Now(), val: b}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// TrackerTodayKey is the cache key invalidated after every successful
// feeding write or tracker mutation for the user. The date is part of the
// key so an entry cached before midnight can never serve a read on the
// next day.
func TrackerTodayKey(userID string, today time.Time) string {
	return fmt.Sprintf("tracker_today_%s_%s", userID, today.Format("2006-01-02"))
}
