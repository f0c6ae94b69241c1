package cache

import (
	"strings"
	"sync"
	"time"
)

// TTL is a thread-safe map whose entries expire after a fixed duration.
// Expired entries miss on lookup and are dropped by a background janitor.
// A full cache evicts the entry closest to expiry.
type TTL[V any] struct {
	mu         sync.RWMutex
	items      map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	stopJanitor chan struct{}
	stopOnce    sync.Once
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a cache whose entries live for ttl. maxEntries <= 0 means unbounded.
func New[V any](ttl time.Duration, maxEntries int) *TTL[V] {
	c := &TTL[V]{
		items:       make(map[string]entry[V]),
		ttl:         ttl,
		maxEntries:  maxEntries,
		now:         time.Now,
		stopJanitor: make(chan struct{}),
	}

	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	go c.janitor(interval)

	return c
}

// Get returns the value stored under key if it has not expired
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || !c.now().Before(item.expiresAt) {
		var zero V
		return zero, false
	}
	return item.value, true
}

// Set stores value under key for the cache TTL
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

func (c *TTL[V]) set(key string, value V) {
	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evict()
	}
	c.items[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// evict drops expired entries, or the one expiring first when none has. Caller holds mu.
func (c *TTL[V]) evict() {
	now := c.now()
	var (
		victim   string
		earliest time.Time
		removed  bool
	)
	for key, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, key)
			removed = true
			continue
		}
		if earliest.IsZero() || item.expiresAt.Before(earliest) {
			victim, earliest = key, item.expiresAt
		}
	}
	if !removed && !earliest.IsZero() {
		delete(c.items, victim)
	}
}

// GetOrCompute returns the cached value for key, or stores and returns compute's result.
// hit reports whether the value came from the cache. Errors are not cached.
// compute runs under the write lock so concurrent misses on a key compute once.
func (c *TTL[V]) GetOrCompute(key string, compute func() (V, error)) (value V, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[key]; ok && c.now().Before(item.expiresAt) {
		return item.value, true, nil
	}

	value, err = compute()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.set(key, value)
	return value, false, nil
}

// Delete removes key
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeletePrefix removes every key starting with prefix and returns how many were removed
func (c *TTL[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones not yet collected included
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop ends the janitor goroutine. It is safe to call more than once.
func (c *TTL[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopJanitor) })
}

func (c *TTL[V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopJanitor:
			return
		}
	}
}

func (c *TTL[V]) collect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, key)
		}
	}
}
