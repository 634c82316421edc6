// Package cache holds small in-process caches owned by whoever constructs them.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	val     V
	expires time.Time
	seq     uint64
}

// TTL is a bounded key/value cache whose entries expire after a fixed TTL.
// When full, expired entries are swept first and then the oldest insert goes.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	now     func() time.Time
	seq     uint64
	entries map[K]entry[V]
}

// NewTTL returns a cache holding at most max entries (max <= 0 means 1024).
func NewTTL[K comparable, V any](ttl time.Duration, max int) *TTL[K, V] {
	if max <= 0 {
		max = 1024
	}
	return &TTL[K, V]{ttl: ttl, max: max, now: time.Now, entries: make(map[K]entry[V])}
}

// WithClock swaps the time source, for tests.
func (c *TTL[K, V]) WithClock(now func() time.Time) *TTL[K, V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *TTL[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, k)
		var zero V
		return zero, false
	}
	return e.val, true
}

func (c *TTL[K, V]) Set(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.entries[k]; !exists && len(c.entries) >= c.max {
		c.sweep(now)
		if len(c.entries) >= c.max {
			c.evictOldest()
		}
	}
	c.seq++
	c.entries[k] = entry[V]{val: v, expires: now.Add(c.ttl), seq: c.seq}
}

func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[K, V]) sweep(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}

func (c *TTL[K, V]) evictOldest() {
	var (
		oldest K
		seq    uint64
		found  bool
	)
	for k, e := range c.entries {
		if !found || e.seq < seq {
			oldest, seq, found = k, e.seq, true
		}
	}
	if found {
		delete(c.entries, oldest)
	}
}
