package ratelimiter

import (
	"sync"
	"time"
)

// Limiter is an in-memory sliding window limiter. Each key may make Limit
// requests in any Window; the oldest recorded hit decides when the next one
// is allowed.
//
// Example usage:
//
//	rl := ratelimiter.New(30, time.Minute)
//	defer rl.Stop()
//
//	if ok, retryAfter := rl.Allow(clientIP); !ok {
//	    w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
//	}
type Limiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// New creates a limiter and starts its cleanup goroutine. Call Stop when done.
func New(limit int, window time.Duration) *Limiter {
	rl := &Limiter{
		hits:        make(map[string][]time.Time),
		limit:       limit,
		window:      window,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow records a hit for key when it fits in the window. A denied call returns
// how long until the oldest hit leaves the window, rounded up to a second.
func (rl *Limiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.limit <= 0 {
		return false, rl.window
	}

	now := rl.now()
	valid := rl.prune(rl.hits[key], now)

	if len(valid) >= rl.limit {
		rl.hits[key] = valid
		retryAfter := valid[0].Add(rl.window).Sub(now)
		if rem := retryAfter % time.Second; rem != 0 {
			retryAfter += time.Second - rem
		}
		return false, retryAfter
	}

	rl.hits[key] = append(valid, now)
	return true, 0
}

// Reset forgets every hit recorded for key
func (rl *Limiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.hits, key)
}

// prune drops hits that fell out of the window. Hits are stored oldest first.
func (rl *Limiter) prune(hits []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append([]time.Time(nil), hits[i:]...)
}

func (rl *Limiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCleanup:
			return
		}
	}
}

// sweep removes keys with no hit left in the window
func (rl *Limiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, hits := range rl.hits {
		if len(rl.prune(hits, now)) == 0 {
			delete(rl.hits, key)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call Stop multiple times.
func (rl *Limiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}
