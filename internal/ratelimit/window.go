// Package ratelimit implements sliding-window admission control keyed by
// client identity, guarding a configured set of sensitive paths.
package ratelimit

import (
	"sync"
	"time"
)

// Result reports an admission decision.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter int // seconds; only meaningful when denied
}

// clientWindow is one client's timestamp log. Timestamps are appended in
// arrival order, so they are monotonically non-decreasing and a single
// front-eviction pass suffices.
type clientWindow struct {
	mu         sync.Mutex
	timestamps []time.Time
	// removed marks a window Sweep has taken out of the map. A request that
	// fetched the window before the sweep must not append to the orphan; it
	// re-fetches instead, so its admission still counts toward the limit.
	removed bool
}

// Limiter is an in-memory sliding-window rate limiter. Each client key owns
// its own lock so the evict-and-append critical section never serializes
// unrelated clients. No I/O happens under any lock.
type Limiter struct {
	mu      sync.RWMutex
	windows map[string]*clientWindow

	limit  int
	window time.Duration
}

// NewLimiter creates a limiter admitting at most limit requests per key
// within a trailing window.
func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}
}

// Allow decides admission for one request from key at time now. Eviction,
// the count check, and the append happen inside a single per-key critical
// section: two concurrent requests can never both observe count = limit-1
// and both be admitted.
func (l *Limiter) Allow(key string, now time.Time) Result {
	var cw *clientWindow
	for {
		cw = l.getOrCreate(key)
		cw.mu.Lock()
		if !cw.removed {
			break
		}
		cw.mu.Unlock()
	}
	defer cw.mu.Unlock()

	cutoff := now.Add(-l.window)
	i := 0
	for ; i < len(cw.timestamps); i++ {
		if cw.timestamps[i].After(cutoff) {
			break
		}
	}
	cw.timestamps = cw.timestamps[i:]

	if len(cw.timestamps) >= l.limit {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: int(l.window / time.Second),
		}
	}

	cw.timestamps = append(cw.timestamps, now)
	return Result{
		Allowed:   true,
		Remaining: l.limit - len(cw.timestamps),
	}
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Sweep drops client keys whose logs hold no in-window entries, bounding the
// key map under churny traffic. Run periodically from a ticker; safe to call
// concurrently with Allow.
func (l *Limiter) Sweep(now time.Time) int {
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, cw := range l.windows {
		cw.mu.Lock()
		empty := len(cw.timestamps) == 0 || !cw.timestamps[len(cw.timestamps)-1].After(cutoff)
		if empty {
			cw.removed = true
			delete(l.windows, key)
			removed++
		}
		cw.mu.Unlock()
	}
	return removed
}

func (l *Limiter) getOrCreate(key string) *clientWindow {
	l.mu.RLock()
	cw := l.windows[key]
	l.mu.RUnlock()
	if cw != nil {
		return cw
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cw = l.windows[key]; cw == nil {
		cw = &clientWindow{}
		l.windows[key] = cw
	}
	return cw
}
