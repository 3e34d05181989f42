package sdk

import (
	"sync"
	"time"
)

// Clock supplies the current unix timestamp (seconds) for a call.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().Unix() }

// ManualClock only moves when told to, so expiry can be tested without sleeping.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set jumps to ts. Moving backwards is ignored to keep the clock monotonic.
func (c *ManualClock) Set(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts > c.now {
		c.now = ts
	}
}

// Advance moves the clock forward by d.
// Example payload: clock.Advance(6 * time.Minute)
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += int64(d / time.Second)
	}
}
