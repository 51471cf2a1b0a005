// Package timer provides frame-driven timers: a pausable Countdown that
// accumulates visible time, and a Loop that runs a callback every frame.
package timer

import (
	"time"

	"github.com/jmylchreest/toastui/internal/frame"
)

// Countdown accumulates the time between frames while not paused and
// calls its expiry function once the accumulated time reaches the limit.
//
// The first frame after Start or Resync only records a timestamp, so a
// long gap before it (such as a hidden document) is never counted.
type Countdown struct {
	sched    frame.Scheduler
	limit    time.Duration
	onExpire func()

	elapsed time.Duration
	last    time.Duration
	hasLast bool
	paused  bool
	resync  bool
	expired bool
	handle  frame.Handle
}

// NewCountdown creates a stopped countdown.
func NewCountdown(sched frame.Scheduler, limit time.Duration, onExpire func()) *Countdown {
	return &Countdown{
		sched:    sched,
		limit:    limit,
		onExpire: onExpire,
	}
}

// Start resets the elapsed time and schedules the first frame. Any frame
// already scheduled by this countdown is cancelled first.
func (c *Countdown) Start() {
	c.Cancel()
	c.elapsed = 0
	c.hasLast = false
	c.resync = false
	c.expired = false
	c.handle = c.sched.RequestFrame(c.frame)
}

// Cancel stops the countdown without firing. Elapsed time is kept.
func (c *Countdown) Cancel() {
	if c.handle != 0 {
		c.sched.CancelFrame(c.handle)
		c.handle = 0
	}
}

// Pause stops accumulation. Frames keep running so the delta measured
// after Resume starts from the last paused frame.
func (c *Countdown) Pause() { c.paused = true }

// Resume restarts accumulation.
func (c *Countdown) Resume() { c.paused = false }

// Resync discards the in-flight delta on the next frame.
func (c *Countdown) Resync() { c.resync = true }

// Paused reports whether accumulation is paused.
func (c *Countdown) Paused() bool { return c.paused }

// Running reports whether a frame is scheduled.
func (c *Countdown) Running() bool { return c.handle != 0 }

// Expired reports whether the countdown has fired since the last Start.
func (c *Countdown) Expired() bool { return c.expired }

// Elapsed returns the accumulated unpaused time.
func (c *Countdown) Elapsed() time.Duration { return c.elapsed }

// Remaining returns the time left before expiry, never negative.
func (c *Countdown) Remaining() time.Duration {
	return max(c.limit-c.elapsed, 0)
}

// Ratio returns the fraction of the limit still remaining, in [0,1].
func (c *Countdown) Ratio() float64 {
	if c.limit <= 0 {
		return 1
	}
	r := 1 - float64(c.elapsed)/float64(c.limit)
	return min(max(r, 0), 1)
}

func (c *Countdown) frame(now time.Duration) {
	c.handle = 0

	if c.resync {
		c.hasLast = false
		c.resync = false
	}

	if !c.hasLast {
		c.last = now
		c.hasLast = true
		c.handle = c.sched.RequestFrame(c.frame)
		return
	}

	if !c.paused {
		c.elapsed += now - c.last
		if c.elapsed >= c.limit {
			c.expired = true
			if c.onExpire != nil {
				c.onExpire()
			}
			return
		}
	}

	c.last = now
	c.handle = c.sched.RequestFrame(c.frame)
}
