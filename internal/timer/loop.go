package timer

import (
	"time"

	"github.com/jmylchreest/toastui/internal/frame"
)

// Loop calls fn on every frame after the first until cancelled.
type Loop struct {
	sched   frame.Scheduler
	fn      func(now time.Duration)
	handle  frame.Handle
	started bool
}

// NewLoop creates a stopped loop.
func NewLoop(sched frame.Scheduler, fn func(now time.Duration)) *Loop {
	return &Loop{sched: sched, fn: fn}
}

// Start (re)starts the loop, cancelling any frame it already scheduled.
func (l *Loop) Start() {
	l.Cancel()
	l.started = false
	l.handle = l.sched.RequestFrame(l.frame)
}

// Cancel stops the loop.
func (l *Loop) Cancel() {
	if l.handle != 0 {
		l.sched.CancelFrame(l.handle)
		l.handle = 0
	}
}

// Running reports whether a frame is scheduled.
func (l *Loop) Running() bool { return l.handle != 0 }

func (l *Loop) frame(now time.Duration) {
	l.handle = l.sched.RequestFrame(l.frame)
	if !l.started {
		l.started = true
		return
	}
	l.fn(now)
}
