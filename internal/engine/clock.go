package engine

import "sync/atomic"

// Tick identifies one driver loop iteration. It wraps to 0 after
// math.MaxUint64; tick 0 is an ordinary tick.
type Tick uint64

// StartTick is the tick of the startup observation. Provider registration
// seeds the state store at this tick and the first loop iteration runs at
// StartTick+1.
const StartTick Tick = 1

// Clock is the logical tick counter owned by the driver loop.
//
// Only the engine advances it, but Current may be read from any goroutine
// (for example by a signal handler reporting where the loop stopped).
type Clock struct {
	tick atomic.Uint64
}

// NewClock creates a clock at tick 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at start.
func NewClockAt(start Tick) *Clock {
	c := &Clock{}
	c.tick.Store(uint64(start))
	return c
}

// Current returns the current tick without advancing.
func (c *Clock) Current() Tick {
	return Tick(c.tick.Load())
}

// Advance moves to the next tick and returns it. Overflow wraps to 0.
func (c *Clock) Advance() Tick {
	return Tick(c.tick.Add(1))
}
