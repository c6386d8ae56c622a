package common

import (
	"sync"
	"time"
)

// Debouncer gates a repeatable action by minimum interval:
// Ready tells whether enough time has passed since the last Mark.
// Concurrency-safe; state only changes through Mark/Reset.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Ready reports whether the action may run now. Does not update state.
func (d *Debouncer) Ready(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.interval <= 0 {
		return true
	}
	if d.last.IsZero() {
		return true
	}
	return now.Sub(d.last) >= d.interval
}

// Mark records the time the action last ran.
func (d *Debouncer) Mark(now time.Time) {
	d.mu.Lock()
	d.last = now
	d.mu.Unlock()
}

// Reset clears the last action time so the next Ready returns true.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	d.last = time.Time{}
	d.mu.Unlock()
}
