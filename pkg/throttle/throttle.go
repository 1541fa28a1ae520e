package throttle

import (
	"sync"
	"time"
)

// Limiter is a debounce gate that opens at most once per interval.
// Go's time package compares monotonic clock readings, so wall
// clock jumps don't affect it.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Allow reports whether the interval since the last allowed call has
// passed and, if so, consumes the slot. There is no queueing, a denied
// call is simply denied.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if !l.last.IsZero() && now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	return true
}

// SetInterval changes the debounce interval for subsequent calls.
func (l *Limiter) SetInterval(interval time.Duration) {
	l.mu.Lock()
	l.interval = interval
	l.mu.Unlock()
}

// Interval returns the current debounce interval.
func (l *Limiter) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}
