package sim

import "time"

// Clock turns frame timestamps into elapsed milliseconds. The first tick
// returns 0 so the chain does not jump on the first frame.
type Clock struct {
	MaxDelta float64 // cap in ms; 0 disables

	last    time.Time
	started bool
}

func (c *Clock) Tick(now time.Time) float64 {
	if !c.started {
		c.started = true
		c.last = now
		return 0
	}
	dt := float64(now.Sub(c.last).Microseconds()) / 1000
	c.last = now
	if dt < 0 {
		dt = 0
	}
	if c.MaxDelta > 0 && dt > c.MaxDelta {
		dt = c.MaxDelta
	}
	return dt
}

// Restart makes the next tick behave like the first one.
func (c *Clock) Restart() {
	c.started = false
}
