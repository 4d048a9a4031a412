package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultWritesPerMinute = 60
	writeWindow            = time.Minute
	// Windows idle this long are dropped by CleanExpired.
	writeWindowIdle = 10 * time.Minute
)

// writeLimiter counts POSTs per client IP in fixed one-minute windows. It has
// no goroutine of its own; the serve command's cache janitor sweeps it.
type writeLimiter struct {
	mu      sync.Mutex
	windows map[string]*writeWindowState
	limit   int
	now     func() time.Time
}

type writeWindowState struct {
	start time.Time
	last  time.Time
	count int
}

func newWriteLimiter(limit int) *writeLimiter {
	if limit <= 0 {
		limit = defaultWritesPerMinute
	}
	return &writeLimiter{
		windows: make(map[string]*writeWindowState),
		limit:   limit,
		now:     time.Now,
	}
}

// allow records one write from ip. When the window is exhausted it returns
// false and the time left until the window resets.
func (l *writeLimiter) allow(ip string, metrics *securityMetrics) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[ip]
	if !ok || now.Sub(w.start) >= writeWindow {
		l.windows[ip] = &writeWindowState{start: now, last: now, count: 1}
		return true, 0
	}
	w.last = now
	if w.count >= l.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false, writeWindow - now.Sub(w.start)
	}
	w.count++
	return true, 0
}

// CleanExpired drops clients idle for writeWindowIdle and reports how many
// were removed. It satisfies cache.Cleaner.
func (l *writeLimiter) CleanExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-writeWindowIdle)
	removed := 0
	for ip, w := range l.windows {
		if w.last.Before(cutoff) {
			delete(l.windows, ip)
			removed++
		}
	}
	return removed
}
