package mouse

import (
	"sync"
	"time"
)

// DefaultWheelInterval is the minimum time between two same-direction wheel
// triggers. Wheel devices emit many events per physical detent.
const DefaultWheelInterval = 50 * time.Millisecond

// WheelLimiter rate-limits wheel triggers per direction.
type WheelLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[Button]time.Time
}

// NewWheelLimiter creates a limiter. A non-positive interval uses
// DefaultWheelInterval.
func NewWheelLimiter(interval time.Duration) *WheelLimiter {
	if interval <= 0 {
		interval = DefaultWheelInterval
	}
	return &WheelLimiter{
		interval: interval,
		last:     make(map[Button]time.Time),
	}
}

// Allow reports whether a wheel event in the given direction at the given
// time may trigger. Suppressed events do not extend the window.
func (l *WheelLimiter) Allow(dir Button, at time.Time) bool {
	if !dir.IsScroll() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.last[dir]; ok && at.Sub(last) < l.interval {
		return false
	}
	l.last[dir] = at
	return true
}

// Reset forgets all previous triggers.
func (l *WheelLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = make(map[Button]time.Time)
}
